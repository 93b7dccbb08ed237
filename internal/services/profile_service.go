package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
)

// ProfileView is the /profile/show payload.
type ProfileView struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Image          string `json:"image"`
	Bio            string `json:"bio"`
	Gender         string `json:"gender"`
	PostCount      int64  `json:"postCount"`
	FollowersCount int64  `json:"followersCount"`
	FollowingCount int64  `json:"followingCount"`
}

// UserDetails is the public view of someone else's profile.
type UserDetails struct {
	User           *models.User `json:"user"`
	IsFollow       bool         `json:"isFollow"`
	FollowersCount int64        `json:"followersCount"`
	FollowingCount int64        `json:"followingCount"`
}

type ProfileService struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
	media   MediaStore
	log     *zap.SugaredLogger
}

func NewProfileService(
	users repository.UserRepository,
	posts repository.PostRepository,
	follows repository.FollowRepository,
	media MediaStore,
	logger *zap.SugaredLogger,
) *ProfileService {
	return &ProfileService{users: users, posts: posts, follows: follows, media: media, log: logger}
}

func (s *ProfileService) Show(ctx context.Context, email string) (*ProfileView, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	postCount, err := s.posts.CountByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}

	return &ProfileView{
		Name:           user.Username,
		Email:          user.Email,
		Image:          user.ProfileImage,
		Bio:            user.Bio,
		Gender:         user.Gender,
		PostCount:      postCount,
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}

// UploadImage replaces the profile image. Data URIs are uploaded to object
// storage first; plain URLs are stored as given.
func (s *ProfileService) UploadImage(ctx context.Context, email, image string) error {
	mediaURL, err := resolveMedia(ctx, s.media, "profile", image)
	if err != nil {
		return fmt.Errorf("resolve profile image: %w", err)
	}
	_, err = s.users.UpdateFields(ctx, email, bson.M{"profileImage": mediaURL})
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidUser
	}
	return err
}

// UpdateUser applies a partial profile update. Renames check username
// uniqueness first.
func (s *ProfileService) UpdateUser(ctx context.Context, email, name, gender, bio string) (*models.User, error) {
	fields := bson.M{}
	if name != "" {
		fields["username"] = name
	}
	if gender != "" {
		fields["gender"] = gender
	}
	if bio != "" {
		fields["bio"] = bio
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	if name != "" {
		existing, err := s.users.FindByUsername(ctx, name)
		if err == nil && existing.Email != email {
			return nil, ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
	}

	updated, err := s.users.UpdateFields(ctx, email, fields)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Search finds users by case-insensitive username match, excluding the
// caller.
func (s *ProfileService) Search(ctx context.Context, viewerID primitive.ObjectID, query string) ([]models.UserSummary, error) {
	users, err := s.users.SearchByUsername(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// UserDetails resolves another user's public profile plus whether the viewer
// follows them.
func (s *ProfileService) UserDetails(ctx context.Context, email, viewerEmail string) (*UserDetails, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	viewer, err := s.users.FindByEmail(ctx, viewerEmail)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("find viewer: %w", err)
	}

	isFollow := false
	if _, err := s.follows.FindEdge(ctx, user.ID, viewer.ID); err == nil {
		isFollow = true
	} else if !errors.Is(err, repository.ErrFollowNotFound) {
		return nil, fmt.Errorf("check follow edge: %w", err)
	}

	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}

	return &UserDetails{
		User:           user,
		IsFollow:       isFollow,
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}
