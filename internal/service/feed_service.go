package service

import (
	"context"

	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/repository"
)

// FeedLimit caps how many messages a home feed carries.
const FeedLimit = 100

// FeedService assembles the home timeline.
type FeedService struct {
	messageRepo repository.MessageRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(messageRepo repository.MessageRepository) *FeedService {
	return &FeedService{messageRepo: messageRepo}
}

// BuildFeed returns the newest messages authored by viewerID or anyone
// they follow, newest first, capped at FeedLimit.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID uint) ([]models.Message, error) {
	return s.messageRepo.Feed(ctx, viewerID, FeedLimit)
}
