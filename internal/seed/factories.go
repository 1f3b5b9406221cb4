// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cli3338198/warbler/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets, so demo
// logins are easy.
const DefaultPassword = "password"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{db: db, rand: rand.New(rand.NewSource(seed))}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(10, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(8),
		Location: fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr()),
		ImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateMessage persists a short message for the user with a created_at
// spread over the last maxDays days so feeds look lived-in.
func (f *Factory) CreateMessage(user *models.User, maxDays int) (*models.Message, error) {
	if maxDays <= 0 {
		maxDays = 30
	}

	text := gofakeit.Sentence(f.rand.Intn(10) + 3)
	if len(text) > models.MaxMessageLength {
		text = text[:models.MaxMessageLength]
	}

	message := &models.Message{
		Text:   text,
		UserID: user.ID,
		CreatedAt: time.Now().
			Add(-time.Duration(f.rand.Intn(maxDays*24)) * time.Hour).
			Add(-time.Duration(f.rand.Intn(60)) * time.Minute),
	}
	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// FollowMesh wires random follow edges between the users. Each user
// follows roughly avgFollows others.
func (f *Factory) FollowMesh(users []*models.User, avgFollows int) error {
	if avgFollows <= 0 || len(users) < 2 {
		return nil
	}

	for _, follower := range users {
		seen := map[uint]bool{follower.ID: true}
		for i := 0; i < avgFollows; i++ {
			target := users[f.rand.Intn(len(users))]
			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true

			follow := &models.Follow{FollowerID: follower.ID, FollowedID: target.ID}
			if err := f.db.Create(follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// LikeMesh hands out random likes, skipping each user's own messages.
func (f *Factory) LikeMesh(users []*models.User, messages []*models.Message, avgLikes int) error {
	if avgLikes <= 0 || len(messages) == 0 {
		return nil
	}

	for _, user := range users {
		seen := map[uint]bool{}
		for i := 0; i < avgLikes; i++ {
			message := messages[f.rand.Intn(len(messages))]
			if message.UserID == user.ID || seen[message.ID] {
				continue
			}
			seen[message.ID] = true

			like := &models.Like{UserID: user.ID, MessageID: message.ID}
			if err := f.db.Create(like).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
