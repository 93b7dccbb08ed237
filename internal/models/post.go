package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post references its media by URL into external object storage. Deleting a
// post triggers a best-effort delete of that object.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Media     string             `bson:"media" json:"media"`
	Title     string             `bson:"title" json:"title"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
