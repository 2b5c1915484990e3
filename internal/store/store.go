// Package store defines the backing-store contract shared by the MongoDB and
// SQL implementations.
package store

import (
	"context"
	"errors"
	"time"

	"cantinho/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would break a uniqueness or
	// reference rule, or when a conditional update lost its precondition.
	ErrConflict = errors.New("conflict")
)

type ProductFilter struct {
	CategoryID    string
	CategorySlug  string
	Search        string
	OnlyAvailable bool
	Featured      *bool
	OnSale        *bool
	Offset        int
	// Limit 0 returns every match.
	Limit int
}

type OrderFilter struct {
	Status        models.OrderStatus
	ExcludeStatus models.OrderStatus
	CustomerName  string
	CreatedBefore *time.Time
	Offset        int
	Limit         int
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	// DeleteCategory refuses with ErrConflict while live products reference it.
	DeleteCategory(ctx context.Context, id string) error
}

type ProductStore interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	// DeleteProduct soft-deletes and returns the record as it was before.
	DeleteProduct(ctx context.Context, id string) (*models.Product, error)
}

type OrderStore interface {
	// IncrementDailyCounter atomically bumps the counter for day and returns
	// the new value.
	IncrementDailyCounter(ctx context.Context, day string) (int64, error)
	// CreateOrder writes the header and all of its items.
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	// GetOrderByToken returns the newest order with token, restricted to day
	// when day is not empty.
	GetOrderByToken(ctx context.Context, token, day string) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	OrderIDs(ctx context.Context, filter OrderFilter) ([]string, error)
	// UpdateOrderStatus moves an order from one status to another and fails
	// with ErrConflict if the stored status is no longer from.
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	// DeleteOrders removes the items and then the headers of ids.
	DeleteOrders(ctx context.Context, ids []string) (int64, error)
}

type AdminStore interface {
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	// SaveAdmin inserts or replaces the admin with the same email.
	SaveAdmin(ctx context.Context, admin *models.Admin) error
}

type Store interface {
	CategoryStore
	ProductStore
	OrderStore
	AdminStore

	// RunInTx runs fn inside a transaction. fn must use the ctx and tx it is
	// given; returning an error rolls everything back.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
