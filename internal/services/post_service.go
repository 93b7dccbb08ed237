package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
)

type PostService struct {
	posts repository.PostRepository
	media MediaStore
	log   *zap.SugaredLogger
}

func NewPostService(posts repository.PostRepository, media MediaStore, logger *zap.SugaredLogger) *PostService {
	return &PostService{posts: posts, media: media, log: logger}
}

func (s *PostService) Create(ctx context.Context, ownerID primitive.ObjectID, title, image string) (*models.Post, error) {
	mediaURL, err := resolveMedia(ctx, s.media, "posts", image)
	if err != nil {
		return nil, fmt.Errorf("resolve media: %w", err)
	}
	post := &models.Post{
		UserID: ownerID,
		Media:  mediaURL,
		Title:  title,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// List returns one page of the owner's posts, newest first, plus the total
// page count for the requested limit.
func (s *PostService) List(ctx context.Context, ownerID primitive.ObjectID, page, limit int64) ([]*models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	total, err := s.posts.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	posts, err := s.posts.FindByOwner(ctx, ownerID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	totalPages := (total + limit - 1) / limit
	return posts, totalPages, nil
}

func (s *PostService) View(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// Delete removes the post record, then deletes the backing media object on a
// best-effort basis. A failed media delete never fails the operation; the
// record is already gone.
func (s *PostService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	go func(mediaURL string) {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.media.DeleteByURL(cleanupCtx, mediaURL); err != nil {
			s.log.Warnw("media cleanup failed", "url", mediaURL, "error", err)
		}
	}(post.Media)

	return post, nil
}
