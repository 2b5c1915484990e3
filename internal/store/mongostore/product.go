package mongostore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

// productQuery builds the find filter. categoryID is the resolved id when the
// caller filtered by slug.
func productQuery(filter store.ProductFilter, categoryID string) bson.M {
	query := bson.M{"deletedAt": nil}

	if categoryID != "" {
		query["categoryId"] = categoryID
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.OnlyAvailable {
		query["inStock"] = true
	}
	if filter.Featured != nil {
		query["isFeatured"] = *filter.Featured
	}
	if filter.OnSale != nil {
		query["isOnSale"] = *filter.OnSale
	}
	return query
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) resolveCategory(ctx context.Context, filter store.ProductFilter) (string, error) {
	if filter.CategoryID != "" || filter.CategorySlug == "" {
		return filter.CategoryID, nil
	}

	var category models.Category
	err := s.col(categoriesCollection).FindOne(ctx, bson.M{"slug": filter.CategorySlug}).Decode(&category)
	if err != nil {
		return "", translate(err)
	}
	return category.ID, nil
}

func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, int64, error) {
	categoryID, err := s.resolveCategory(ctx, filter)
	if errors.Is(err, store.ErrNotFound) {
		return []models.Product{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	query := productQuery(filter, categoryID)
	total, err := s.col(productsCollection).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.col(productsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.col(productsCollection).FindOne(ctx, bson.M{"_id": id, "deletedAt": nil}).Decode(&product)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.col(productsCollection).InsertOne(ctx, product)
	return translate(err)
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	set := bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"categoryId":  product.CategoryID,
		"imageUrl":    product.ImageURL,
		"inStock":     product.InStock,
		"isFeatured":  product.IsFeatured,
		"isOnSale":    product.IsOnSale,
		"updatedAt":   product.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if product.OldPrice != nil {
		set["oldPrice"] = *product.OldPrice
	} else {
		update["$unset"] = bson.M{"oldPrice": ""}
	}

	res, err := s.col(productsCollection).UpdateOne(ctx, bson.M{"_id": product.ID, "deletedAt": nil}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	now := time.Now().UTC()

	var previous models.Product
	err := s.col(productsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "deletedAt": nil},
		bson.M{"$set": bson.M{"deletedAt": now, "inStock": false, "updatedAt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&previous)
	if err != nil {
		return nil, translate(err)
	}
	return &previous, nil
}
