package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

const incrementCounterSQL = `INSERT INTO token_counters (day, last_number, created_at) VALUES (?, 1, ?)
ON CONFLICT (day) DO UPDATE SET last_number = token_counters.last_number + 1
RETURNING last_number`

func itemsByLine(db *gorm.DB) *gorm.DB {
	return db.Order("line ASC")
}

func orderScope(filter store.OrderFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.ExcludeStatus != "" {
			db = db.Where("status <> ?", filter.ExcludeStatus)
		}
		if filter.CustomerName != "" {
			db = db.Where("customer_name = ?", filter.CustomerName)
		}
		if filter.CreatedBefore != nil {
			db = db.Where("created_at < ?", *filter.CreatedBefore)
		}
		return db
	}
}

func (s *Store) IncrementDailyCounter(ctx context.Context, day string) (int64, error) {
	var last int64
	err := s.db.WithContext(ctx).
		Raw(incrementCounterSQL, day, time.Now().UTC()).
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last, nil
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translate(err)
		}
		if len(order.Items) == 0 {
			return nil
		}
		return translate(tx.CreateInBatches(&order.Items, len(order.Items)).Error)
	})
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", itemsByLine).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *Store) GetOrderByToken(ctx context.Context, token, day string) (*models.Order, error) {
	query := s.db.WithContext(ctx).
		Preload("Items", itemsByLine).
		Where("token = ?", token)
	if day != "" {
		query = query.Where("token_date = ?", day)
	}

	var order models.Order
	if err := query.Order("created_at DESC").First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, int64, error) {
	scope := orderScope(filter)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Scopes(scope).
		Preload("Items", itemsByLine).
		Order("created_at DESC")
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	orders := make([]models.Order, 0)
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *Store) OrderIDs(ctx context.Context, filter store.OrderFilter) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(orderScope(filter)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

func (s *Store) DeleteOrders(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
