package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

func orderQuery(filter store.OrderFilter) bson.M {
	query := bson.M{}

	status := bson.M{}
	if filter.Status != "" {
		status["$eq"] = filter.Status
	}
	if filter.ExcludeStatus != "" {
		status["$ne"] = filter.ExcludeStatus
	}
	if len(status) > 0 {
		query["status"] = status
	}
	if filter.CustomerName != "" {
		query["customerName"] = filter.CustomerName
	}
	if filter.CreatedBefore != nil {
		query["createdAt"] = bson.M{"$lt": *filter.CreatedBefore}
	}
	return query
}

func (s *Store) IncrementDailyCounter(ctx context.Context, day string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{
		"$inc":         bson.M{"lastNumber": 1},
		"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
	}

	var counter models.TokenCounter
	// A first-of-the-day upsert that loses a race fails with a duplicate key
	// error and aborts the transaction; the token retry policy starts over.
	err := s.col(countersCollection).FindOneAndUpdate(ctx, bson.M{"_id": day}, update, opts).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.LastNumber, nil
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	_, err := s.col(ordersCollection).InsertOne(ctx, order)
	return translate(err)
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.col(ordersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *Store) GetOrderByToken(ctx context.Context, token, day string) (*models.Order, error) {
	query := bson.M{"token": token}
	if day != "" {
		query["tokenDate"] = day
	}

	var order models.Order
	err := s.col(ordersCollection).FindOne(ctx, query,
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&order)
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, int64, error) {
	query := orderQuery(filter)

	total, err := s.col(ordersCollection).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.col(ordersCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *Store) OrderIDs(ctx context.Context, filter store.OrderFilter) ([]string, error) {
	cursor, err := s.col(ordersCollection).Find(ctx, orderQuery(filter),
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res, err := s.col(ordersCollection).UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	exists, err := s.col(ordersCollection).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if exists == 0 {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

// DeleteOrders removes whole order documents; their items go with them.
func (s *Store) DeleteOrders(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.col(ordersCollection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
