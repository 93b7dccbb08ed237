package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token is the single active session record for a user. A new login upserts
// over the old record, which is what invalidates the previous session. The
// collection carries a TTL index on createdAt so stale records expire on
// their own.
type Token struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Token     string             `bson:"token" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
