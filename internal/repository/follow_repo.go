package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
)

var ErrFollowNotFound = errors.New("follow edge not found")

type FollowRepository interface {
	FindEdge(ctx context.Context, followID, followerID primitive.ObjectID) (*models.Follow, error)
	Create(ctx context.Context, f *models.Follow) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountFollowers(ctx context.Context, followID primitive.ObjectID) (int64, error)
	CountFollowing(ctx context.Context, followerID primitive.ObjectID) (int64, error)
	ListFollowing(ctx context.Context, followerID primitive.ObjectID) ([]*models.Follow, error)
}

type mongoFollowRepo struct {
	col *mongo.Collection
}

func NewMongoFollowRepo(db *mongo.Database) FollowRepository {
	col := db.Collection("followers")
	// pair index speeds up the toggle lookup; intentionally not unique, the
	// service checks existence before writing
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followId", Value: 1}},
	})
	return &mongoFollowRepo{col: col}
}

func (r *mongoFollowRepo) FindEdge(ctx context.Context, followID, followerID primitive.ObjectID) (*models.Follow, error) {
	var f models.Follow
	err := r.col.FindOne(ctx, bson.M{"followId": followID, "followerId": followerID}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrFollowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *mongoFollowRepo) Create(ctx context.Context, f *models.Follow) error {
	f.CreatedAt = time.Now().UTC()
	res, err := r.col.InsertOne(ctx, f)
	if err != nil {
		return err
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoFollowRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoFollowRepo) CountFollowers(ctx context.Context, followID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"followId": followID})
}

func (r *mongoFollowRepo) CountFollowing(ctx context.Context, followerID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"followerId": followerID})
}

func (r *mongoFollowRepo) ListFollowing(ctx context.Context, followerID primitive.ObjectID) ([]*models.Follow, error) {
	cur, err := r.col.Find(ctx, bson.M{"followerId": followerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Follow
	for cur.Next(ctx) {
		var f models.Follow
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, cur.Err()
}
