package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is one edge of the social graph: followerId follows followId.
// Uniqueness of the pair is checked find-before-write by the service, not
// enforced by the store.
type Follow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowID   primitive.ObjectID `bson:"followId" json:"followId"`
	FollowerID primitive.ObjectID `bson:"followerId" json:"followerId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
