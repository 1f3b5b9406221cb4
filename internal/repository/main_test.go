package repository

import (
	"testing"

	"github.com/cli3338198/warbler/internal/database"
	"github.com/cli3338198/warbler/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupMockDB returns a gorm DB backed by sqlmock for SQL-level assertions.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database for behavioral tests
// that exercise real SQL (joins, subqueries, unique indexes, transactions).
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		ImageURL: models.DefaultImageURL,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestMessage(t *testing.T, db *gorm.DB, userID uint, text string) *models.Message {
	t.Helper()
	message := &models.Message{Text: text, UserID: userID}
	require.NoError(t, db.Create(message).Error)
	return message
}
