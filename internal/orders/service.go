// Package orders turns carts into persisted orders and manages them
// afterwards: payment confirmation, status changes, lookups and cleanup.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cantinho/internal/cart"
	"cantinho/internal/models"
	"cantinho/internal/store"
	"cantinho/internal/token"
)

const MaxCustomerNameLength = 120

// RetentionDays lists the ages accepted by PurgeOlderThan.
var RetentionDays = []int{7, 15, 30, 60, 90, 180, 365}

type Service struct {
	store store.Store
	loc   *time.Location
	retry token.RetryPolicy
	now   func() time.Time
}

type Option func(*Service)

func WithRetryPolicy(policy token.RetryPolicy) Option {
	return func(s *Service) { s.retry = policy }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service. loc decides which calendar day a token
// belongs to.
func NewService(st store.Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		store: st,
		loc:   loc,
		retry: token.DefaultRetryPolicy(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the token day for the current time.
func (s *Service) Today() string {
	return token.Today(s.now(), s.loc)
}

func normalizeCustomerName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", &ValidationError{Field: "customerName", Message: "customer name is required"}
	}
	if utf8.RuneCountInString(name) > MaxCustomerNameLength {
		return "", &ValidationError{
			Field:   "customerName",
			Message: fmt.Sprintf("customer name must be at most %d characters", MaxCustomerNameLength),
		}
	}
	return name, nil
}

// snapshotLines re-reads every product and freezes its current name and
// price into the order lines.
func (s *Service) snapshotLines(ctx context.Context, c cart.Cart, orderID string, created time.Time) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(c.Items))
	total := decimal.Zero

	for _, line := range c.Items {
		if line.Quantity <= 0 {
			continue
		}

		product, err := s.store.GetProduct(ctx, line.Product.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, decimal.Zero, &ProductUnavailableError{ProductID: line.Product.ID, Name: line.Product.Name}
		}
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !product.InStock {
			return nil, decimal.Zero, &ProductUnavailableError{ProductID: product.ID, Name: product.Name}
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			Line:        len(items) + 1,
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    line.Quantity,
			Subtotal:    subtotal,
			CreatedAt:   created,
		})
		total = total.Add(subtotal)
	}

	if len(items) == 0 {
		return nil, decimal.Zero, &ValidationError{Field: "items", Message: "cart is empty"}
	}
	return items, total, nil
}

// Submit creates a pending order from c. The token, the header and the items
// are written in one transaction; only token allocation failures are retried.
func (s *Service) Submit(ctx context.Context, customerName string, c cart.Cart) (*models.Order, error) {
	name, err := normalizeCustomerName(customerName)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, &ValidationError{Field: "items", Message: "cart is empty"}
	}

	created := s.now().UTC()
	order := &models.Order{
		ID:           uuid.NewString(),
		CustomerName: name,
		Status:       models.StatusPending,
		TokenDate:    token.Today(created, s.loc),
		CreatedAt:    created,
	}

	order.Items, order.Total, err = s.snapshotLines(ctx, c, order.ID, created)
	if err != nil {
		return nil, err
	}

	err = s.retry.Do(ctx, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
			tok, err := token.Allocate(ctx, tx, order.TokenDate)
			if err != nil {
				return err
			}
			order.Token = tok
			return tx.CreateOrder(ctx, order)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	log.Printf("[ORDER] [INFO] order %s created with token %s (%s)", order.ID, order.Token, order.TokenDate)
	return order, nil
}

// ConfirmPayment marks the pending order carrying tok as paid. An empty day
// means the newest order with that token.
func (s *Service) ConfirmPayment(ctx context.Context, tok, day string) (*models.Order, error) {
	order, err := s.GetByToken(ctx, tok, day)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, models.StatusPaid); err != nil {
		return nil, err
	}
	log.Printf("[ORDER] [INFO] payment confirmed for %s (%s)", order.Token, order.TokenDate)
	return order, nil
}

// UpdateStatus applies an admin status change.
func (s *Service) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", to)}
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, to); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) transition(ctx context.Context, order *models.Order, to models.OrderStatus) error {
	if !order.Status.CanTransitionTo(to) {
		return &InvalidTransitionError{From: order.Status, To: to}
	}
	if err := s.store.UpdateOrderStatus(ctx, order.ID, order.Status, to); err != nil {
		return err
	}
	order.Status = to
	return nil
}

func (s *Service) GetByToken(ctx context.Context, tok, day string) (*models.Order, error) {
	tok = strings.ToUpper(strings.TrimSpace(tok))
	if tok == "" {
		return nil, &ValidationError{Field: "token", Message: "token is required"}
	}
	day = strings.TrimSpace(day)
	if day != "" && !token.ValidDay(day) {
		return nil, &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return s.store.GetOrderByToken(ctx, tok, day)
}

// GetByCustomerName lists the orders placed under name, newest first.
func (s *Service) GetByCustomerName(ctx context.Context, name string) ([]models.Order, error) {
	name, err := normalizeCustomerName(name)
	if err != nil {
		return nil, err
	}
	orders, _, err := s.store.ListOrders(ctx, store.OrderFilter{CustomerName: name})
	return orders, err
}

func (s *Service) List(ctx context.Context, filter store.OrderFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", filter.Status)}
	}
	return s.store.ListOrders(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetOrder(ctx, id); err != nil {
		return err
	}
	_, err := s.store.DeleteOrders(ctx, []string{id})
	return err
}

func validRetention(days int) bool {
	for _, allowed := range RetentionDays {
		if days == allowed {
			return true
		}
	}
	return false
}

// PurgeOlderThan deletes orders created more than days ago, or every order
// when all is set. Pending orders are always kept.
func (s *Service) PurgeOlderThan(ctx context.Context, days int, all bool) (int64, error) {
	filter := store.OrderFilter{ExcludeStatus: models.StatusPending}
	if !all {
		if !validRetention(days) {
			return 0, &ValidationError{
				Field:   "olderThanDays",
				Message: fmt.Sprintf("must be one of %v", RetentionDays),
			}
		}
		cutoff := s.now().UTC().AddDate(0, 0, -days)
		filter.CreatedBefore = &cutoff
	}

	ids, err := s.store.OrderIDs(ctx, filter)
	if err != nil {
		return 0, err
	}

	deleted, err := s.store.DeleteOrders(ctx, ids)
	if err != nil {
		return 0, err
	}
	log.Printf("[ORDER] [INFO] retention cleanup removed %d order(s)", deleted)
	return deleted, nil
}
