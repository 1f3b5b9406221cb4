package service

import (
	"context"

	"github.com/cli3338198/warbler/internal/models"
)

type userRepoStub struct {
	getByIDFn                func(context.Context, uint) (*models.User, error)
	getByIDWithCredentialsFn func(context.Context, uint) (*models.User, error)
	getByIDWithMessagesFn    func(context.Context, uint, int) (*models.User, error)
	getByEmailFn             func(context.Context, string) (*models.User, error)
	getByUsernameFn          func(context.Context, string) (*models.User, error)
	createFn                 func(context.Context, *models.User) error
	updateFn                 func(context.Context, *models.User) error
	deleteFn                 func(context.Context, uint) error
	listFn                   func(context.Context, int, int) ([]models.User, error)
	searchFn                 func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithCredentials(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithCredentialsFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithMessages(ctx context.Context, id uint, limit int) (*models.User, error) {
	return s.getByIDWithMessagesFn(ctx, id, limit)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, q string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, q, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:                func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByIDWithCredentialsFn: func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByIDWithMessagesFn:    func(context.Context, uint, int) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:             func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:          func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:                 func(context.Context, *models.User) error { return nil },
		updateFn:                 func(context.Context, *models.User) error { return nil },
		deleteFn:                 func(context.Context, uint) error { return nil },
		listFn:                   func(context.Context, int, int) ([]models.User, error) { return nil, nil },
		searchFn:                 func(context.Context, string, int, int) ([]models.User, error) { return nil, nil },
	}
}

type followRepoStub struct {
	createFn         func(context.Context, uint, uint) error
	deleteFn         func(context.Context, uint, uint) error
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	isFollowedByFn   func(context.Context, uint, uint) (bool, error)
	followingFn      func(context.Context, uint) ([]models.User, error)
	followersFn      func(context.Context, uint) ([]models.User, error)
	countFollowingFn func(context.Context, uint) (int64, error)
	countFollowersFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followedID uint) error {
	return s.createFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) error {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followedID)
}
func (s *followRepoStub) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.isFollowedByFn(ctx, userID, otherID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:         func(context.Context, uint, uint) error { return nil },
		deleteFn:         func(context.Context, uint, uint) error { return nil },
		isFollowingFn:    func(context.Context, uint, uint) (bool, error) { return false, nil },
		isFollowedByFn:   func(context.Context, uint, uint) (bool, error) { return false, nil },
		followingFn:      func(context.Context, uint) ([]models.User, error) { return nil, nil },
		followersFn:      func(context.Context, uint) ([]models.User, error) { return nil, nil },
		countFollowingFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countFollowersFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type messageRepoStub struct {
	createFn        func(context.Context, *models.Message) error
	getByIDFn       func(context.Context, uint, uint) (*models.Message, error)
	getByUserIDFn   func(context.Context, uint, uint, int, int) ([]models.Message, error)
	feedFn          func(context.Context, uint, int) ([]models.Message, error)
	deleteFn        func(context.Context, uint) error
	likeFn          func(context.Context, uint, uint) error
	unlikeFn        func(context.Context, uint, uint) error
	isLikedFn       func(context.Context, uint, uint) (bool, error)
	likedMessagesFn func(context.Context, uint, uint) ([]models.Message, error)
}

func (s *messageRepoStub) Create(ctx context.Context, message *models.Message) error {
	return s.createFn(ctx, message)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *messageRepoStub) GetByUserID(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.Message, error) {
	return s.getByUserIDFn(ctx, userID, viewerID, limit, offset)
}
func (s *messageRepoStub) Feed(ctx context.Context, viewerID uint, limit int) ([]models.Message, error) {
	return s.feedFn(ctx, viewerID, limit)
}
func (s *messageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *messageRepoStub) Like(ctx context.Context, userID, messageID uint) error {
	return s.likeFn(ctx, userID, messageID)
}
func (s *messageRepoStub) Unlike(ctx context.Context, userID, messageID uint) error {
	return s.unlikeFn(ctx, userID, messageID)
}
func (s *messageRepoStub) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, messageID)
}
func (s *messageRepoStub) LikedMessages(ctx context.Context, userID, viewerID uint) ([]models.Message, error) {
	return s.likedMessagesFn(ctx, userID, viewerID)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:        func(context.Context, *models.Message) error { return nil },
		getByIDFn:       func(context.Context, uint, uint) (*models.Message, error) { return &models.Message{}, nil },
		getByUserIDFn:   func(context.Context, uint, uint, int, int) ([]models.Message, error) { return nil, nil },
		feedFn:          func(context.Context, uint, int) ([]models.Message, error) { return nil, nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		likeFn:          func(context.Context, uint, uint) error { return nil },
		unlikeFn:        func(context.Context, uint, uint) error { return nil },
		isLikedFn:       func(context.Context, uint, uint) (bool, error) { return false, nil },
		likedMessagesFn: func(context.Context, uint, uint) ([]models.Message, error) { return nil, nil },
	}
}
