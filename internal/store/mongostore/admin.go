package mongostore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cantinho/internal/models"
)

func (s *Store) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := s.col(adminsCollection).
		FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).
		Decode(&admin)
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (s *Store) SaveAdmin(ctx context.Context, admin *models.Admin) error {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))

	_, err := s.col(adminsCollection).UpdateOne(ctx,
		bson.M{"email": admin.Email},
		bson.M{
			"$set": bson.M{"passwordHash": admin.PasswordHash},
			"$setOnInsert": bson.M{
				"_id":       admin.ID,
				"createdAt": admin.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}
