package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a menu entry. Orders never reference its mutable fields directly;
// they keep a snapshot of name and price on each line.
type Product struct {
	ID          string           `bson:"_id" gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string           `bson:"name" gorm:"not null" json:"name"`
	Description string           `bson:"description,omitempty" json:"description"`
	Price       decimal.Decimal  `bson:"price" gorm:"type:decimal(10,2);not null" json:"price"`
	OldPrice    *decimal.Decimal `bson:"oldPrice,omitempty" gorm:"type:decimal(10,2)" json:"oldPrice,omitempty"`
	CategoryID  string           `bson:"categoryId" gorm:"index;type:varchar(36);not null" json:"categoryId"`
	ImageURL    string           `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	InStock     bool             `bson:"inStock" json:"inStock"`
	IsFeatured  bool             `bson:"isFeatured" json:"isFeatured"`
	IsOnSale    bool             `bson:"isOnSale" json:"isOnSale"`
	DeletedAt   *time.Time       `bson:"deletedAt,omitempty" gorm:"index" json:"-"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

func (p *Product) TableName() string {
	return "products"
}
