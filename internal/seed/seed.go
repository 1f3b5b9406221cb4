package seed

import (
	"log/slog"

	"github.com/cli3338198/warbler/internal/middleware"
	"github.com/cli3338198/warbler/internal/models"

	"gorm.io/gorm"
)

// Options controls how much demo data Run creates.
type Options struct {
	Users           int
	MessagesPerUser int
	AvgFollows      int
	AvgLikes        int
}

// DefaultOptions is a small but lively data set.
var DefaultOptions = Options{
	Users:           25,
	MessagesPerUser: 8,
	AvgFollows:      6,
	AvgLikes:        10,
}

// Run populates the database with demo users, messages, follows, and
// likes. It refuses to touch a database that already has users.
func Run(db *gorm.DB, opts Options) error {
	var existing int64
	if err := db.Model(&models.User{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		middleware.Logger.Info("seed skipped, users already present", slog.Int64("users", existing))
		return nil
	}

	factory := NewFactory(db)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	messages := make([]*models.Message, 0, opts.Users*opts.MessagesPerUser)
	for _, user := range users {
		for i := 0; i < opts.MessagesPerUser; i++ {
			message, err := factory.CreateMessage(user, 30)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
	}

	if err := factory.FollowMesh(users, opts.AvgFollows); err != nil {
		return err
	}
	if err := factory.LikeMesh(users, messages, opts.AvgLikes); err != nil {
		return err
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", len(users)),
		slog.Int("messages", len(messages)))
	return nil
}
