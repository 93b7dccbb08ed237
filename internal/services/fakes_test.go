package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
)

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) UpdateFields(_ context.Context, email string, fields bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != email {
			continue
		}
		if v, ok := fields["username"].(string); ok {
			u.Username = v
		}
		if v, ok := fields["bio"].(string); ok {
			u.Bio = v
		}
		if v, ok := fields["gender"].(string); ok {
			u.Gender = v
		}
		if v, ok := fields["profileImage"].(string); ok {
			u.ProfileImage = v
		}
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) SetOTP(_ context.Context, id primitive.ObjectID, otp string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.OTP = otp
	u.OTPExpires = &expires
	return nil
}

func (r *memUserRepo) ClearOTPAndVerify(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.OTP = ""
	u.OTPExpires = nil
	u.IsVerified = true
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) SearchByUsername(_ context.Context, query string, exclude primitive.ObjectID) ([]*models.User, error) {
	return nil, nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memFollowRepo struct {
	mu    sync.Mutex
	edges map[primitive.ObjectID]*models.Follow
}

func newMemFollowRepo() *memFollowRepo {
	return &memFollowRepo{edges: make(map[primitive.ObjectID]*models.Follow)}
}

func (r *memFollowRepo) FindEdge(_ context.Context, followID, followerID primitive.ObjectID) (*models.Follow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.FollowID == followID && e.FollowerID == followerID {
			return e, nil
		}
	}
	return nil, repository.ErrFollowNotFound
}

func (r *memFollowRepo) Create(_ context.Context, f *models.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = primitive.NewObjectID()
	r.edges[f.ID] = f
	return nil
}

func (r *memFollowRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges, id)
	return nil
}

func (r *memFollowRepo) CountFollowers(_ context.Context, followID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.FollowID == followID {
			n++
		}
	}
	return n, nil
}

func (r *memFollowRepo) CountFollowing(_ context.Context, followerID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.FollowerID == followerID {
			n++
		}
	}
	return n, nil
}

func (r *memFollowRepo) ListFollowing(_ context.Context, followerID primitive.ObjectID) ([]*models.Follow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Follow
	for _, e := range r.edges {
		if e.FollowerID == followerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// memPostRepo keeps posts newest first, matching the mongo sort order.
type memPostRepo struct {
	mu    sync.Mutex
	posts []*models.Post
}

func (r *memPostRepo) Create(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	r.posts = append([]*models.Post{p}, r.posts...)
	return nil
}

func (r *memPostRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrPostNotFound
}

func (r *memPostRepo) FindByOwner(_ context.Context, ownerID primitive.ObjectID, skip, limit int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []*models.Post
	for _, p := range r.posts {
		if p.UserID == ownerID {
			owned = append(owned, p)
		}
	}
	if skip >= int64(len(owned)) {
		return []*models.Post{}, nil
	}
	owned = owned[skip:]
	if limit < int64(len(owned)) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *memPostRepo) FindByOwners(_ context.Context, ownerIDs []primitive.ObjectID) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		for _, id := range ownerIDs {
			if p.UserID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *memPostRepo) CountByOwner(_ context.Context, ownerID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if p.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *memPostRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return p, nil
		}
	}
	return nil, repository.ErrPostNotFound
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (r *memMessageRepo) Insert(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = primitive.NewObjectID()
	r.messages = append(r.messages, m)
	return nil
}

// FindTouching returns newest first, like the mongo implementation.
func (r *memMessageRepo) FindTouching(_ context.Context, userID primitive.ObjectID) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memMessageRepo) FindThread(_ context.Context, a, b primitive.ObjectID, skip, limit int64) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	sortNewestFirst(out)
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(msgs []*models.Message) {
	for i := 1; i < len(msgs); i++ {
		for j := i; j > 0 && msgs[j].Timestamp.After(msgs[j-1].Timestamp); j-- {
			msgs[j], msgs[j-1] = msgs[j-1], msgs[j]
		}
	}
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string // otp codes, in order
	to   []string
	err  error
}

func (m *fakeMailer) SendOTPEmail(_ context.Context, toEmail, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, code)
	m.to = append(m.to, toEmail)
	return nil
}

func (m *fakeMailer) lastOTP() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

// fakeIssuer hands out predictable tokens.
type fakeIssuer struct {
	issued  int
	revoked []string
}

func (f *fakeIssuer) Issue(_ context.Context, userID primitive.ObjectID, _ string) (string, error) {
	f.issued++
	return "token-" + userID.Hex(), nil
}

func (f *fakeIssuer) Verify(_ context.Context, token string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(token[len("token-"):])
}

func (f *fakeIssuer) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

// fakeLimiter allows up to n sends, then rate-limits.
type fakeLimiter struct {
	mu      sync.Mutex
	allowed int
	calls   int
}

func (l *fakeLimiter) Allow(context.Context, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.allowed > 0 && l.calls > l.allowed {
		return ErrOTPRateLimited
	}
	return nil
}

// fakeMediaStore records uploads and deletes; deletes signal on a channel so
// tests can wait out the async cleanup goroutine.
type fakeMediaStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	deleted chan string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{uploads: make(map[string][]byte), deleted: make(chan string, 8)}
}

func (s *fakeMediaStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = data
	return "https://media.test/" + key, nil
}

func (s *fakeMediaStore) DeleteByURL(_ context.Context, mediaURL string) error {
	s.deleted <- mediaURL
	return nil
}
