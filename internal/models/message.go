package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is immutable once persisted. Read access is shared by sender and
// receiver; nothing ever mutates a stored message.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID `bson:"sender" json:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiver" json:"receiverId"`
	Content    string             `bson:"content" json:"content"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// PopulatedMessage is a message enriched with sender/receiver profiles, the
// shape pushed over the socket and returned by thread queries.
type PopulatedMessage struct {
	ID        string      `json:"id"`
	Sender    UserSummary `json:"sender"`
	Receiver  UserSummary `json:"receiver"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Conversation is one row of the conversation summary list: the counterparty
// plus the most recent message exchanged with them.
type Conversation struct {
	User        UserSummary `json:"user"`
	LastMessage string      `json:"lastMessage"`
	Timestamp   time.Time   `json:"timestamp"`
}
