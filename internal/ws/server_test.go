package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
	"github.com/srijagatheeswaran/social-media-server/internal/services"
)

type fakeMessageRepo struct {
	inserted []*models.Message
}

func (f *fakeMessageRepo) Insert(_ context.Context, m *models.Message) error {
	m.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, m)
	return nil
}

func (f *fakeMessageRepo) FindTouching(context.Context, primitive.ObjectID) ([]*models.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) FindThread(context.Context, primitive.ObjectID, primitive.ObjectID, int64, int64) ([]*models.Message, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(context.Context, *models.User) error { return nil }
func (f *fakeUserRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
func (f *fakeUserRepo) FindByUsername(context.Context, string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
func (f *fakeUserRepo) UpdateFields(context.Context, string, bson.M) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
func (f *fakeUserRepo) SetOTP(context.Context, primitive.ObjectID, string, time.Time) error {
	return nil
}
func (f *fakeUserRepo) ClearOTPAndVerify(context.Context, primitive.ObjectID) error { return nil }
func (f *fakeUserRepo) Delete(context.Context, primitive.ObjectID) error            { return nil }
func (f *fakeUserRepo) SearchByUsername(context.Context, string, primitive.ObjectID) ([]*models.User, error) {
	return nil, nil
}

func newRelayServer(t *testing.T, users ...*models.User) (*Server, *fakeMessageRepo) {
	t.Helper()
	userRepo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		userRepo.users[u.ID] = u
	}
	msgRepo := &fakeMessageRepo{}
	svc := services.NewMessageService(msgRepo, userRepo)
	return NewServer(NewHub(), svc, zap.NewNop().Sugar()), msgRepo
}

func recvEvent(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case b := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(b, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Envelope{}
	}
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func testUser(name string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: name, Email: name + "@example.com"}
}

func TestSendDeliversToBothParties(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	srv, msgRepo := newRelayServer(t, alice, bob)

	aliceConn := NewClient(nil)
	bobConn := NewClient(nil)
	srv.hub.Register(alice.ID.Hex(), aliceConn)
	srv.hub.Register(bob.ID.Hex(), bobConn)

	srv.handleSend(mustJSON(t, sendMessagePayload{
		SenderID:   alice.ID.Hex(),
		ReceiverID: bob.ID.Hex(),
		Content:    "hi",
	}))

	require.Len(t, msgRepo.inserted, 1)
	assert.Equal(t, "hi", msgRepo.inserted[0].Content)
	assert.False(t, msgRepo.inserted[0].Timestamp.IsZero())

	for _, conn := range []*Client{bobConn, aliceConn} {
		env := recvEvent(t, conn)
		assert.Equal(t, EventPrivateMessage, env.Event)
		var msg models.PopulatedMessage
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		assert.Equal(t, "hi", msg.Content)
		assert.Equal(t, "alice", msg.Sender.Username)
		assert.Equal(t, "bob", msg.Receiver.Username)
	}
}

func TestSendPersistsWhenReceiverOffline(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	srv, msgRepo := newRelayServer(t, alice, bob)

	aliceConn := NewClient(nil)
	srv.hub.Register(alice.ID.Hex(), aliceConn)

	srv.handleSend(mustJSON(t, sendMessagePayload{
		SenderID:   alice.ID.Hex(),
		ReceiverID: bob.ID.Hex(),
		Content:    "you there?",
	}))

	// persisted regardless of presence, sender still gets the echo
	require.Len(t, msgRepo.inserted, 1)
	env := recvEvent(t, aliceConn)
	assert.Equal(t, EventPrivateMessage, env.Event)
}

func TestSendHonoursClientTimestamp(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	srv, msgRepo := newRelayServer(t, alice, bob)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv.handleSend(mustJSON(t, sendMessagePayload{
		SenderID:   alice.ID.Hex(),
		ReceiverID: bob.ID.Hex(),
		Content:    "backdated",
		Timestamp:  ts.UnixMilli(),
	}))

	require.Len(t, msgRepo.inserted, 1)
	assert.True(t, msgRepo.inserted[0].Timestamp.Equal(ts))
}

func TestSendDropsUnknownSender(t *testing.T) {
	bob := testUser("bob")
	srv, msgRepo := newRelayServer(t, bob)

	srv.handleSend(mustJSON(t, sendMessagePayload{
		SenderID:   primitive.NewObjectID().Hex(),
		ReceiverID: bob.ID.Hex(),
		Content:    "ghost",
	}))

	assert.Empty(t, msgRepo.inserted)
}

func TestRegisterAcceptsObjectAndStringPayloads(t *testing.T) {
	srv, _ := newRelayServer(t)
	userID := primitive.NewObjectID().Hex()

	c1 := NewClient(nil)
	srv.handleRegister(c1, mustJSON(t, registerPayload{UserID: userID}))
	got, ok := srv.hub.Resolve(userID)
	require.True(t, ok)
	assert.Same(t, c1, got)

	other := primitive.NewObjectID().Hex()
	c2 := NewClient(nil)
	srv.handleRegister(c2, mustJSON(t, other))
	got, ok = srv.hub.Resolve(other)
	require.True(t, ok)
	assert.Same(t, c2, got)
}

func TestRegisterRejectsMalformedID(t *testing.T) {
	srv, _ := newRelayServer(t)
	srv.handleRegister(NewClient(nil), mustJSON(t, registerPayload{UserID: "not-an-object-id"}))
	assert.Equal(t, 0, srv.hub.Count())
}
