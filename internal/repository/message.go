package repository

import (
	"context"
	"errors"

	"github.com/cli3338198/warbler/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for messages and likes.
// Read methods take a viewerID so results carry like counts and whether the
// viewer has liked each message; pass 0 for an anonymous viewer.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Message, error)
	GetByUserID(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.Message, error)
	Feed(ctx context.Context, viewerID uint, limit int) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, messageID uint) error
	Unlike(ctx context.Context, userID, messageID uint) error
	IsLiked(ctx context.Context, userID, messageID uint) (bool, error)
	LikedMessages(ctx context.Context, userID, viewerID uint) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// withDetails builds the base query that annotates each message with its
// like count and whether viewerID has liked it.
func (r *messageRepository) withDetails(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select(`messages.*,
			(SELECT COUNT(*) FROM likes WHERE likes.message_id = messages.id) AS likes_count,
			EXISTS(SELECT 1 FROM likes WHERE likes.message_id = messages.id AND likes.user_id = ?) AS liked`,
			viewerID).
		Preload("User")
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Message, error) {
	var message models.Message
	if err := r.withDetails(ctx, viewerID).
		Where("messages.id = ?", id).
		First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

func (r *messageRepository) GetByUserID(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	if limit <= 0 {
		limit = 100
	}

	if err := r.withDetails(ctx, viewerID).
		Where("messages.user_id = ?", userID).
		Order("messages.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Feed returns the newest messages authored by viewerID or by anyone they
// follow, newest first, capped at limit. One query, no per-author fan-out.
func (r *messageRepository) Feed(ctx context.Context, viewerID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	if limit <= 0 {
		limit = 100
	}

	following := r.db.Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", viewerID)

	if err := r.withDetails(ctx, viewerID).
		Where("messages.user_id = ? OR messages.user_id IN (?)", viewerID, following).
		Order("messages.created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Delete removes the message and its likes in one transaction.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Like records userID liking messageID. A concurrent duplicate insert lands
// on the (user_id, message_id) unique index and is treated as already done.
func (r *messageRepository) Like(ctx context.Context, userID, messageID uint) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, message_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, message_id) DO NOTHING`,
		userID, messageID,
	).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Unlike removes the like if present. Removing an absent like is a no-op.
func (r *messageRepository) Unlike(ctx context.Context, userID, messageID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *messageRepository) LikedMessages(ctx context.Context, userID, viewerID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.withDetails(ctx, viewerID).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}
