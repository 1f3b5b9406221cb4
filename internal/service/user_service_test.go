package service

import (
	"context"
	"testing"

	"github.com/cli3338198/warbler/internal/models"
)

func TestUserServiceFollowSelf(t *testing.T) {
	svc := NewUserService(noopUserRepo(), noopFollowRepo())

	err := svc.Follow(context.Background(), 1, 1)
	if models.ErrorCode(err) != models.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for self-follow, got %v", err)
	}
}

func TestUserServiceFollowMissingTarget(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	svc := NewUserService(users, noopFollowRepo())

	err := svc.Follow(context.Background(), 1, 99)
	if models.ErrorCode(err) != models.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUserServiceFollowAlreadyFollowing(t *testing.T) {
	follows := noopFollowRepo()
	follows.isFollowingFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
	svc := NewUserService(noopUserRepo(), follows)

	err := svc.Follow(context.Background(), 1, 2)
	if models.ErrorCode(err) != models.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for duplicate follow, got %v", err)
	}
}

func TestUserServiceFollowCreatesEdge(t *testing.T) {
	follows := noopFollowRepo()
	var gotFollower, gotFollowed uint
	follows.createFn = func(_ context.Context, followerID, followedID uint) error {
		gotFollower, gotFollowed = followerID, followedID
		return nil
	}
	svc := NewUserService(noopUserRepo(), follows)

	if err := svc.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if gotFollower != 1 || gotFollowed != 2 {
		t.Fatalf("edge direction wrong: got %d -> %d", gotFollower, gotFollowed)
	}
}

func TestUserServiceUnfollowAbsentEdge(t *testing.T) {
	// Removing a follow that never existed succeeds quietly.
	svc := NewUserService(noopUserRepo(), noopFollowRepo())
	if err := svc.Unfollow(context.Background(), 1, 2); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
}

func TestUserServiceUpdateProfile(t *testing.T) {
	hash := hashPassword(t, "hunter22")
	users := noopUserRepo()
	users.getByIDWithCredentialsFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, Username: "oldname", Email: "old@example.com", Password: hash}, nil
	}
	// The cached read strips the hash; re-authentication must not use it.
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, Username: "oldname", Email: "old@example.com"}, nil
	}
	var saved *models.User
	users.updateFn = func(_ context.Context, user *models.User) error {
		saved = user
		return nil
	}
	svc := NewUserService(users, noopFollowRepo())
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, 1, UpdateProfileInput{
			Username: "newname",
			Email:    "new@example.com",
			Password: "wrong",
		})
		if models.ErrorCode(err) != models.CodeUnauthorized {
			t.Fatalf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("success applies changes and defaults", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, 1, UpdateProfileInput{
			Username: "newname",
			Email:    "new@example.com",
			Bio:      "warbling",
			Password: "hunter22",
		})
		if err != nil {
			t.Fatalf("update profile: %v", err)
		}
		if saved == nil {
			t.Fatal("expected user to be saved")
		}
		if user.Username != "newname" || user.Bio != "warbling" {
			t.Fatalf("changes not applied: %#v", user)
		}
		if user.ImageURL != models.DefaultImageURL || user.HeaderImageURL != models.DefaultHeaderImageURL {
			t.Fatalf("blank image fields should fall back to defaults: %#v", user)
		}
	})
}

func TestUserServiceList(t *testing.T) {
	users := noopUserRepo()
	var searched string
	users.searchFn = func(_ context.Context, q string, _, _ int) ([]models.User, error) {
		searched = q
		return []models.User{{Username: "bigbird"}}, nil
	}
	listed := false
	users.listFn = func(context.Context, int, int) ([]models.User, error) {
		listed = true
		return nil, nil
	}
	svc := NewUserService(users, noopFollowRepo())
	ctx := context.Background()

	if _, err := svc.List(ctx, "  bird  ", 50, 0); err != nil {
		t.Fatalf("list with query: %v", err)
	}
	if searched != "bird" {
		t.Errorf("expected trimmed query, got %q", searched)
	}

	if _, err := svc.List(ctx, "", 50, 0); err != nil {
		t.Fatalf("list without query: %v", err)
	}
	if !listed {
		t.Error("expected empty query to use List, not Search")
	}
}
