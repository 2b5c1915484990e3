package models

import "time"

type Admin struct {
	ID           string    `bson:"_id" gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `bson:"email" gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `bson:"passwordHash" gorm:"not null" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

func (a *Admin) TableName() string {
	return "admins"
}
