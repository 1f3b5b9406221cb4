package service

import (
	"context"

	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/observability"
	"github.com/cli3338198/warbler/internal/repository"
	"github.com/cli3338198/warbler/internal/validation"
)

// MessageService provides message and like business logic.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewMessageService returns a new MessageService.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

// Create posts a new message authored by userID.
func (s *MessageService) Create(ctx context.Context, userID uint, text string) (*models.Message, error) {
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	message := &models.Message{Text: text, UserID: userID}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	observability.MessagesCreatedTotal.Inc()
	return message, nil
}

// GetByID returns the message annotated for viewerID, or NOT_FOUND.
func (s *MessageService) GetByID(ctx context.Context, id, viewerID uint) (*models.Message, error) {
	return s.messageRepo.GetByID(ctx, id, viewerID)
}

// GetByUserID returns the messages authored by userID, newest first.
func (s *MessageService) GetByUserID(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.Message, error) {
	return s.messageRepo.GetByUserID(ctx, userID, viewerID, limit, offset)
}

// Delete removes a message. Only its author may delete it.
func (s *MessageService) Delete(ctx context.Context, messageID, actorID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID, actorID)
	if err != nil {
		return err
	}
	if message.UserID != actorID {
		return models.NewForbiddenError("You can only delete your own messages")
	}
	return s.messageRepo.Delete(ctx, messageID)
}

// ToggleLike flips actorID's like on the message and reports the resulting
// state. Liking your own message is forbidden.
func (s *MessageService) ToggleLike(ctx context.Context, messageID, actorID uint) (bool, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID, actorID)
	if err != nil {
		return false, err
	}
	if message.UserID == actorID {
		return false, models.NewForbiddenError("You cannot like your own message")
	}

	if message.Liked {
		if err := s.messageRepo.Unlike(ctx, actorID, messageID); err != nil {
			return false, err
		}
		observability.LikeTogglesTotal.WithLabelValues("unliked").Inc()
		return false, nil
	}

	if err := s.messageRepo.Like(ctx, actorID, messageID); err != nil {
		return false, err
	}
	observability.LikeTogglesTotal.WithLabelValues("liked").Inc()
	return true, nil
}

// LikedMessages returns the messages userID has liked, annotated for
// viewerID.
func (s *MessageService) LikedMessages(ctx context.Context, userID, viewerID uint) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.messageRepo.LikedMessages(ctx, userID, viewerID)
}
