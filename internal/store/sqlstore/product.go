package sqlstore

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func productScope(filter store.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("products.deleted_at IS NULL")

		if filter.CategoryID != "" {
			db = db.Where("products.category_id = ?", filter.CategoryID)
		}
		if filter.CategorySlug != "" {
			db = db.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", filter.CategorySlug)
		}
		if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
			like := "%" + likeEscaper.Replace(search) + "%"
			db = db.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`, like, like)
		}
		if filter.OnlyAvailable {
			db = db.Where("products.in_stock = ?", true)
		}
		if filter.Featured != nil {
			db = db.Where("products.is_featured = ?", *filter.Featured)
		}
		if filter.OnSale != nil {
			db = db.Where("products.is_on_sale = ?", *filter.OnSale)
		}
		return db
	}
}

func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, int64, error) {
	scope := productScope(filter)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(scope).
		Select("products.*").
		Order("products.name ASC")
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	products := make([]models.Product, 0)
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&product).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(product).Error)
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND deleted_at IS NULL", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"old_price":   product.OldPrice,
			"category_id": product.CategoryID,
			"image_url":   product.ImageURL,
			"in_stock":    product.InStock,
			"is_featured": product.IsFeatured,
			"is_on_sale":  product.IsOnSale,
			"updated_at":  product.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	var existing models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&existing).Error; err != nil {
			return translate(err)
		}

		now := time.Now().UTC()
		return tx.Model(&models.Product{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"deleted_at": now,
				"in_stock":   false,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &existing, nil
}
