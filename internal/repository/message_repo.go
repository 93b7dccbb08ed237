package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
)

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// FindTouching returns every message sent or received by the user,
	// newest first.
	FindTouching(ctx context.Context, userID primitive.ObjectID) ([]*models.Message, error)
	// FindThread returns the two-party thread newest first with skip/limit
	// pagination.
	FindThread(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]*models.Message, error)
}

type mongoMessageRepo struct {
	col *mongo.Collection
}

func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	col := db.Collection("messages")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return &mongoMessageRepo{col: col}
}

func (r *mongoMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoMessageRepo) FindTouching(ctx context.Context, userID primitive.ObjectID) ([]*models.Message, error) {
	filter := bson.M{"$or": []bson.M{{"sender": userID}, {"receiver": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeMessages(ctx, cur)
}

func (r *mongoMessageRepo) FindThread(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]*models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender": a, "receiver": b},
		{"sender": b, "receiver": a},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeMessages(ctx, cur)
}

func decodeMessages(ctx context.Context, cur *mongo.Cursor) ([]*models.Message, error) {
	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}
