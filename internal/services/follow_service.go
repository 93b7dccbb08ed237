package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
)

// FollowFeed is the /follow/list payload: who the caller follows and those
// users' posts, newest first.
type FollowFeed struct {
	Following []models.UserSummary `json:"following"`
	Posts     []*models.Post       `json:"posts"`
}

type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	posts   repository.PostRepository
}

func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
) *FollowService {
	return &FollowService{follows: follows, users: users, posts: posts}
}

// Toggle follows the target if no edge exists, unfollows otherwise, and
// reports the resulting state. The find-then-write pair is deliberately not
// atomic; concurrent duplicate toggles are human-triggered and harmless.
func (s *FollowService) Toggle(ctx context.Context, followerID, followID primitive.ObjectID) (followed bool, err error) {
	edge, err := s.follows.FindEdge(ctx, followID, followerID)
	if err == nil {
		if err := s.follows.Delete(ctx, edge.ID); err != nil {
			return false, fmt.Errorf("delete edge: %w", err)
		}
		return false, nil
	}
	if !errors.Is(err, repository.ErrFollowNotFound) {
		return false, fmt.Errorf("find edge: %w", err)
	}

	if err := s.follows.Create(ctx, &models.Follow{FollowID: followID, FollowerID: followerID}); err != nil {
		return false, fmt.Errorf("create edge: %w", err)
	}
	return true, nil
}

func (s *FollowService) Feed(ctx context.Context, followerID primitive.ObjectID) (*FollowFeed, error) {
	edges, err := s.follows.ListFollowing(ctx, followerID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}

	feed := &FollowFeed{
		Following: make([]models.UserSummary, 0, len(edges)),
		Posts:     []*models.Post{},
	}
	ownerIDs := make([]primitive.ObjectID, 0, len(edges))
	for _, e := range edges {
		user, err := s.users.FindByID(ctx, e.FollowID)
		if errors.Is(err, repository.ErrUserNotFound) {
			// dangling edge, the followed account was deleted
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve followed user: %w", err)
		}
		feed.Following = append(feed.Following, user.Summary())
		ownerIDs = append(ownerIDs, user.ID)
	}

	if len(ownerIDs) > 0 {
		posts, err := s.posts.FindByOwners(ctx, ownerIDs)
		if err != nil {
			return nil, fmt.Errorf("load followed posts: %w", err)
		}
		feed.Posts = posts
	}
	return feed, nil
}
