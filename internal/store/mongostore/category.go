package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.col(categoriesCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := s.col(categoriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := s.col(categoriesCollection).InsertOne(ctx, category)
	return translate(err)
}

func (s *Store) UpdateCategory(ctx context.Context, category *models.Category) error {
	res, err := s.col(categoriesCollection).UpdateOne(ctx,
		bson.M{"_id": category.ID},
		bson.M{"$set": bson.M{
			"name":        category.Name,
			"description": category.Description,
			"slug":        category.Slug,
		}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.RunInTx(ctx, func(ctx context.Context, _ store.Store) error {
		inUse, err := s.col(productsCollection).CountDocuments(ctx, bson.M{
			"categoryId": id,
			"deletedAt":  nil,
		})
		if err != nil {
			return err
		}
		if inUse > 0 {
			return store.ErrConflict
		}

		res, err := s.col(categoriesCollection).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
