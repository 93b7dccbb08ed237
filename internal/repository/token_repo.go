package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
)

var ErrTokenNotFound = errors.New("token not found")

// TokenRepository holds at most one live token per user: Upsert replaces any
// existing record for the user id.
type TokenRepository interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, token string) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Token, error)
	DeleteByToken(ctx context.Context, token string) error
}

type mongoTokenRepo struct {
	col *mongo.Collection
}

func NewMongoTokenRepo(db *mongo.Database, ttl time.Duration) TokenRepository {
	col := db.Collection("tokens")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds()))},
	})
	return &mongoTokenRepo{col: col}
}

func (r *mongoTokenRepo) Upsert(ctx context.Context, userID primitive.ObjectID, token string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"token": token, "createdAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *mongoTokenRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Token, error) {
	var t models.Token
	err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *mongoTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"token": token})
	return err
}
