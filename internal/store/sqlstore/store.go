// Package sqlstore implements store.Store on top of gorm. Postgres is the
// production dialect; tests run the same code against SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps db and turns on gorm's driver error translation.
func New(db *gorm.DB) *Store {
	db.Config.TranslateError = true
	return &Store{db: db}
}

// Migrate creates or updates every table the store uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.TokenCounter{},
		&models.Admin{},
	)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const pqUniqueViolation = "23505"

// translate maps driver errors onto the store sentinels. The Postgres pool is
// opened through lib/pq, whose errors gorm's dialect does not recognise.
func translate(err error) error {
	var pqErr *pq.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	default:
		return err
	}
}
