package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
)

// Thread is one page of a two-party conversation.
type Thread struct {
	Messages  []*models.PopulatedMessage `json:"messages"`
	OtherUser models.UserSummary         `json:"otherUser"`
}

type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository) *MessageService {
	return &MessageService{messages: messages, users: users}
}

// Send persists the message and returns it enriched with sender and receiver
// profiles. Persistence never depends on either party being connected;
// delivery is the relay's problem and happens after this returns.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID primitive.ObjectID, content string, timestamp time.Time) (*models.PopulatedMessage, error) {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}
	receiver, err := s.users.FindByID(ctx, receiverID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("resolve receiver: %w", err)
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  timestamp,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	return &models.PopulatedMessage{
		ID:        msg.ID.Hex(),
		Sender:    sender.Summary(),
		Receiver:  receiver.Summary(),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}, nil
}

// Conversations groups every message touching the user by counterparty,
// keeping only the most recent message per counterparty. Messages arrive
// newest first, so the first sighting of a counterparty wins.
func (s *MessageService) Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	msgs, err := s.messages.FindTouching(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	seen := make(map[primitive.ObjectID]bool)
	out := []models.Conversation{}
	for _, m := range msgs {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		if seen[other] {
			continue
		}
		seen[other] = true

		user, err := s.users.FindByID(ctx, other)
		if errors.Is(err, repository.ErrUserNotFound) {
			// counterparty account deleted, skip the conversation
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve counterparty: %w", err)
		}
		out = append(out, models.Conversation{
			User:        user.Summary(),
			LastMessage: m.Content,
			Timestamp:   m.Timestamp,
		})
	}
	return out, nil
}

// Thread returns one page of the conversation with otherID, newest first.
func (s *MessageService) Thread(ctx context.Context, userID, otherID primitive.ObjectID, page, limit int64) (*Thread, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	other, err := s.users.FindByID(ctx, otherID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("resolve other user: %w", err)
	}

	msgs, err := s.messages.FindThread(ctx, userID, otherID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}

	self, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve caller: %w", err)
	}

	summaries := map[primitive.ObjectID]models.UserSummary{
		self.ID:  self.Summary(),
		other.ID: other.Summary(),
	}
	out := make([]*models.PopulatedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &models.PopulatedMessage{
			ID:        m.ID.Hex(),
			Sender:    summaries[m.SenderID],
			Receiver:  summaries[m.ReceiverID],
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return &Thread{Messages: out, OtherUser: other.Summary()}, nil
}
