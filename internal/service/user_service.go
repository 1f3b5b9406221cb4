package service

import (
	"context"
	"strings"

	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/observability"
	"github.com/cli3338198/warbler/internal/repository"
	"github.com/cli3338198/warbler/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService provides profile and follow-graph business logic.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// GetByID returns the user or a NOT_FOUND error.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns users, filtered by a username substring when query is
// non-empty.
func (s *UserService) List(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.userRepo.List(ctx, limit, offset)
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}

// UpdateProfileInput carries the editable profile fields plus the current
// password, which must match before any change is applied.
type UpdateProfileInput struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Password       string
}

// UpdateProfile re-authenticates the user with their current password and
// then applies the changes. A wrong password yields an UNAUTHORIZED error;
// a username collision yields DUPLICATE_IDENTITY.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	// The password check needs the hash, which the cached user record
	// deliberately omits, so this must be the uncached read.
	user, err := s.userRepo.GetByIDWithCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return nil, models.NewUnauthorizedError("Username and/or password was incorrect.")
	}

	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user.Username = input.Username
	user.Email = input.Email
	user.Bio = input.Bio
	user.Location = input.Location

	user.ImageURL = input.ImageURL
	if user.ImageURL == "" {
		user.ImageURL = models.DefaultImageURL
	}
	user.HeaderImageURL = input.HeaderImageURL
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = models.DefaultHeaderImageURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and all their content.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

// Follow creates a follow edge from userID to targetID.
func (s *UserService) Follow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	already, err := s.followRepo.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if already {
		return models.NewValidationError("Already following this user")
	}

	if err := s.followRepo.Create(ctx, userID, targetID); err != nil {
		return err
	}
	observability.FollowChangesTotal.WithLabelValues("follow").Inc()
	return nil
}

// Unfollow removes the edge from userID to targetID. Unfollowing someone
// who was never followed is a no-op.
func (s *UserService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.followRepo.Delete(ctx, userID, targetID); err != nil {
		return err
	}
	observability.FollowChangesTotal.WithLabelValues("unfollow").Inc()
	return nil
}

// IsFollowing reports whether followerID follows followedID.
func (s *UserService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followedID)
}

// Following returns the users that userID follows.
func (s *UserService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID)
}

// Followers returns the users following userID.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID)
}
