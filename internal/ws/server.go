package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/services"
)

// Socket events. Clients announce themselves with register_user, push
// messages with send_message, and receive private_message.
const (
	EventRegisterUser   = "register_user"
	EventSendMessage    = "send_message"
	EventPrivateMessage = "private_message"
)

const handlerTimeout = 10 * time.Second

// Envelope frames every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type registerPayload struct {
	UserID string `json:"userId"`
}

type sendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	// epoch milliseconds; zero means "stamp at receipt"
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Server owns the realtime channel: it registers connections in the hub and
// relays messages between them.
type Server struct {
	hub      *Hub
	messages *services.MessageService
	log      *zap.SugaredLogger
}

func NewServer(hub *Hub, messages *services.MessageService, logger *zap.SugaredLogger) *Server {
	return &Server{hub: hub, messages: messages, log: logger}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Handle runs the read loop for one connection. Blocks until the client
// disconnects, then unregisters whatever mapping still points at it.
func (s *Server) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		client := NewClient(conn)
		go client.WritePump()

		defer func() {
			s.hub.Unregister(client)
			client.Close()
		}()

		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				s.log.Debugw("dropping malformed frame", "error", err)
				continue
			}

			switch env.Event {
			case EventRegisterUser:
				s.handleRegister(client, env.Data)
			case EventSendMessage:
				s.handleSend(env.Data)
			default:
				s.log.Debugw("unknown socket event", "event", env.Event)
			}
		}
	}
}

func (s *Server) handleRegister(client *Client, data json.RawMessage) {
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
		// some clients send the bare id as a JSON string
		var id string
		if err := json.Unmarshal(data, &id); err != nil || id == "" {
			return
		}
		p.UserID = id
	}
	if _, err := primitive.ObjectIDFromHex(p.UserID); err != nil {
		s.log.Warnw("register_user with malformed id", "userId", p.UserID)
		return
	}
	s.hub.Register(p.UserID, client)
	s.log.Infow("user registered", "userId", p.UserID, "online", s.hub.Count())
}

// handleSend persists the message first, then fans out delivery to whichever
// of the two parties currently hold a live connection. The sender only gets
// an echo when their connection differs from the receiver's.
func (s *Server) handleSend(data json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Debugw("dropping malformed send_message", "error", err)
		return
	}
	senderID, err := primitive.ObjectIDFromHex(p.SenderID)
	if err != nil {
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(p.ReceiverID)
	if err != nil {
		return
	}

	var ts time.Time
	if p.Timestamp > 0 {
		ts = time.UnixMilli(p.Timestamp).UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	populated, err := s.messages.Send(ctx, senderID, receiverID, p.Content, ts)
	if err != nil {
		s.log.Errorw("message send failed", "sender", p.SenderID, "receiver", p.ReceiverID, "error", err)
		return
	}

	receiverConn, receiverOnline := s.hub.Resolve(p.ReceiverID)
	if receiverOnline {
		receiverConn.Send(EventPrivateMessage, populated)
	}
	if senderConn, ok := s.hub.Resolve(p.SenderID); ok && senderConn != receiverConn {
		senderConn.Send(EventPrivateMessage, populated)
	}
}
