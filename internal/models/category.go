package models

import "time"

// Category groups products on the menu. Slug is derived from Name and is unique.
type Category struct {
	ID          string    `bson:"_id" gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `bson:"name" gorm:"not null" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Slug        string    `bson:"slug" gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

func (c *Category) TableName() string {
	return "categories"
}
