// Package service contains the business logic layer.
package service

import (
	"context"

	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/observability"
	"github.com/cli3338198/warbler/internal/repository"
	"github.com/cli3338198/warbler/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup and credential verification.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// SignupInput carries the fields of the signup form.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// Signup validates the input, hashes the password, and creates the account.
// A username or email collision surfaces as a DUPLICATE_IDENTITY error.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	imageURL := input.ImageURL
	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
		ImageURL: imageURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.SignupsTotal.Inc()
	return user, nil
}

// Authenticate checks a username and password pair. It returns (nil, nil)
// for an unknown username or a wrong password so callers cannot tell the
// two apart.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		observability.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, nil
	}

	observability.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}
