package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
// Completed and cancelled orders are final.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is one cart line frozen at submission time.
type OrderItem struct {
	ID          string          `bson:"id" gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID     string          `bson:"orderId" gorm:"index;type:varchar(36);not null" json:"orderId"`
	Line        int             `bson:"line" gorm:"not null" json:"line"`
	ProductID   string          `bson:"productId" gorm:"index;type:varchar(36)" json:"productId"`
	ProductName string          `bson:"productName" gorm:"not null" json:"productName"`
	Price       decimal.Decimal `bson:"price" gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `bson:"quantity" gorm:"not null" json:"quantity"`
	Subtotal    decimal.Decimal `bson:"subtotal" gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
}

func (i *OrderItem) TableName() string {
	return "order_items"
}

// Order is the persisted order header. Total is fixed at creation.
type Order struct {
	ID           string          `bson:"_id" gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerName string          `bson:"customerName" gorm:"index;not null" json:"customerName"`
	Total        decimal.Decimal `bson:"total" gorm:"type:decimal(10,2);not null" json:"total"`
	Token        string          `bson:"token" gorm:"uniqueIndex:idx_orders_token_day;not null" json:"token"`
	TokenDate    string          `bson:"tokenDate" gorm:"uniqueIndex:idx_orders_token_day;type:varchar(10);not null" json:"tokenDate"`
	Status       OrderStatus     `bson:"status" gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt    time.Time       `bson:"createdAt" gorm:"index" json:"createdAt"`
	Items        []OrderItem     `bson:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) TableName() string {
	return "orders"
}

// TokenCounter holds the last token number handed out for a calendar day.
type TokenCounter struct {
	Day        string    `bson:"_id" gorm:"primaryKey;type:varchar(10)" json:"day"`
	LastNumber int64     `bson:"lastNumber" gorm:"not null;default:0" json:"lastNumber"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

func (t *TokenCounter) TableName() string {
	return "token_counters"
}
