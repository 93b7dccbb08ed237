package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
)

func newPostService(posts repository.PostRepository, media MediaStore) *PostService {
	return NewPostService(posts, media, zap.NewNop().Sugar())
}

func TestCreateStoresHostedURLAsIs(t *testing.T) {
	posts := &memPostRepo{}
	svc := newPostService(posts, newFakeMediaStore())

	owner := primitive.NewObjectID()
	post, err := svc.Create(context.Background(), owner, "hello", "https://cdn.example.com/pic.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", post.Media)
	assert.Equal(t, owner, post.UserID)
}

func TestCreateUploadsDataURI(t *testing.T) {
	posts := &memPostRepo{}
	media := newFakeMediaStore()
	svc := newPostService(posts, media)

	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	post, err := svc.Create(context.Background(), primitive.NewObjectID(), "hello",
		"data:image/png;base64,"+payload)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(post.Media, "https://media.test/posts/"))
	assert.True(t, strings.HasSuffix(post.Media, ".png"))
	require.Len(t, media.uploads, 1)
	for _, data := range media.uploads {
		assert.Equal(t, []byte("png-bytes"), data)
	}
}

func TestListPaginatesWithTotalPages(t *testing.T) {
	posts := &memPostRepo{}
	svc := newPostService(posts, newFakeMediaStore())
	owner := primitive.NewObjectID()

	for i := 0; i < 25; i++ {
		require.NoError(t, posts.Create(context.Background(), &models.Post{
			UserID: owner,
			Title:  fmt.Sprintf("post %d", i),
		}))
	}

	page, totalPages, err := svc.List(context.Background(), owner, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page, 10)
	assert.Equal(t, int64(3), totalPages)

	// last page holds the remainder
	page, totalPages, err = svc.List(context.Background(), owner, 3, 10)
	require.NoError(t, err)
	assert.Len(t, page, 5)
	assert.Equal(t, int64(3), totalPages)

	page, _, err = svc.List(context.Background(), owner, 4, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestListDefaultsPageAndLimit(t *testing.T) {
	posts := &memPostRepo{}
	svc := newPostService(posts, newFakeMediaStore())
	owner := primitive.NewObjectID()

	require.NoError(t, posts.Create(context.Background(), &models.Post{UserID: owner}))

	page, totalPages, err := svc.List(context.Background(), owner, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Equal(t, int64(1), totalPages)
}

func TestDeleteRemovesRecordThenMedia(t *testing.T) {
	posts := &memPostRepo{}
	media := newFakeMediaStore()
	svc := newPostService(posts, media)

	post := &models.Post{UserID: primitive.NewObjectID(), Media: "https://media.test/posts/x.png"}
	require.NoError(t, posts.Create(context.Background(), post))

	deleted, err := svc.Delete(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)

	_, err = posts.FindByID(context.Background(), post.ID)
	assert.ErrorIs(t, err, repository.ErrPostNotFound)

	select {
	case url := <-media.deleted:
		assert.Equal(t, "https://media.test/posts/x.png", url)
	case <-time.After(time.Second):
		t.Fatal("media cleanup never ran")
	}
}

func TestDeleteUnknownPost(t *testing.T) {
	svc := newPostService(&memPostRepo{}, newFakeMediaStore())
	_, err := svc.Delete(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
}
