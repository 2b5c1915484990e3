package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes(db *mongo.Database, collection string, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("EnsureIndexes: creating %d index(es) on %s", len(models), collection)
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Printf("EnsureIndexes: %s index error: %v", collection, err)
		return err
	}
	log.Printf("EnsureIndexes: %s indexes ready: %v", collection, names)
	return nil
}

func EnsureCategoryIndexes(db *mongo.Database) error {
	return createIndexes(db, "categories", mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName("slug_unique").SetUnique(true),
	})
}

func EnsureProductIndexes(db *mongo.Database) error {
	return createIndexes(db, "products",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "categoryId", Value: 1}},
			Options: options.Index().SetName("categoryId_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_index"),
		},
	)
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return createIndexes(db, "orders",
		mongo.IndexModel{
			Keys: bson.D{{Key: "tokenDate", Value: 1}, {Key: "token", Value: 1}},
			Options: options.Index().
				SetName("token_day_unique").
				SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "customerName", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("customerName_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_createdAt_index"),
		},
	)
}

func EnsureAdminIndexes(db *mongo.Database) error {
	return createIndexes(db, "admins", mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
}

// EnsureIndexes creates every index the mongo store relies on. The unique
// ones back the slug, admin email and per-day token rules.
func EnsureIndexes(db *mongo.Database) error {
	for _, ensure := range []func(*mongo.Database) error{
		EnsureCategoryIndexes,
		EnsureProductIndexes,
		EnsureOrderIndexes,
		EnsureAdminIndexes,
	} {
		if err := ensure(db); err != nil {
			return err
		}
	}
	return nil
}
