package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cli3338198/warbler/internal/cache"
	"github.com/cli3338198/warbler/internal/config"
	"github.com/cli3338198/warbler/internal/database"
	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Port:          "0",
		SessionSecret: "handler-test-secret",
		SessionTTL:    time.Hour,
		Env:           "test",
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return s, s.newApp(), db
}

func createUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		ImageURL: models.DefaultImageURL,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// signIn opens a session for the user and returns it with its cookie.
func signIn(t *testing.T, s *Server, userID uint) (*session.Session, *http.Cookie) {
	t.Helper()
	sess, cookie, err := s.sessions.Create(context.Background(), userID)
	require.NoError(t, err)
	return sess, &http.Cookie{Name: session.CookieName, Value: cookie}
}

func getPage(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestAnonymousLanding(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := getPage(t, app, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Sign up now")
}

func TestEveryResponseIsNoStore(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := getPage(t, app, "/", nil)
	assert.Equal(t, "no-store", resp.Header.Get(fiber.HeaderCacheControl))
	_ = readBody(t, resp)
}

func TestGuardedPagesRedirectAnonymous(t *testing.T) {
	_, app, _ := setupTestServer(t)

	for _, path := range []string{"/users", "/users/1", "/users/1/following", "/messages/new", "/messages/1"} {
		resp := getPage(t, app, path, nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)
		_ = readBody(t, resp)
	}
}

func TestHomeFeedShowsOwnAndFollowedMessages(t *testing.T) {
	s, app, db := setupTestServer(t)

	viewer := createUser(t, db, "viewer", "hunter22")
	friend := createUser(t, db, "friend", "hunter22")
	stranger := createUser(t, db, "stranger", "hunter22")
	require.NoError(t, db.Create(&models.Follow{FollowerID: viewer.ID, FollowedID: friend.ID}).Error)
	require.NoError(t, db.Create(&models.Message{Text: "my own warble", UserID: viewer.ID}).Error)
	require.NoError(t, db.Create(&models.Message{Text: "a friendly warble", UserID: friend.ID}).Error)
	require.NoError(t, db.Create(&models.Message{Text: "an unseen warble", UserID: stranger.ID}).Error)

	_, cookie := signIn(t, s, viewer.ID)
	resp := getPage(t, app, "/", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "my own warble")
	assert.Contains(t, body, "a friendly warble")
	assert.NotContains(t, body, "an unseen warble")
}

func TestSignupFlow(t *testing.T) {
	_, app, db := setupTestServer(t)

	t.Run("success signs the user in", func(t *testing.T) {
		resp := postForm(t, app, "/signup", url.Values{
			"username": {"newbird"},
			"email":    {"newbird@example.com"},
			"password": {"hunter22"},
		}, nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		var hasSession bool
		for _, c := range resp.Cookies() {
			if c.Name == session.CookieName && c.Value != "" {
				hasSession = true
			}
		}
		assert.True(t, hasSession, "expected a session cookie after signup")

		var user models.User
		require.NoError(t, db.Where("username = ?", "newbird").First(&user).Error)
		assert.NotEqual(t, "hunter22", user.Password)
		_ = readBody(t, resp)
	})

	t.Run("duplicate username re-renders the form", func(t *testing.T) {
		createUser(t, db, "takenbird", "hunter22")

		resp := postForm(t, app, "/signup", url.Values{
			"username": {"takenbird"},
			"email":    {"other@example.com"},
			"password": {"hunter22"},
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := readBody(t, resp)
		assert.Contains(t, body, "Username already taken")
		assert.Contains(t, body, "other@example.com", "form values should be preserved")
	})
}

func TestLoginFlow(t *testing.T) {
	_, app, db := setupTestServer(t)
	createUser(t, db, "tweetybird", "hunter22")

	t.Run("success greets and redirects", func(t *testing.T) {
		resp := postForm(t, app, "/login", url.Values{
			"username": {"tweetybird"},
			"password": {"hunter22"},
		}, nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		_ = readBody(t, resp)
	})

	t.Run("bad password re-renders with notice", func(t *testing.T) {
		resp := postForm(t, app, "/login", url.Values{
			"username": {"tweetybird"},
			"password": {"wrong"},
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "Invalid credentials.")
	})
}

func TestLogoutRequiresOriginToken(t *testing.T) {
	s, app, db := setupTestServer(t)
	user := createUser(t, db, "tweetybird", "hunter22")
	sess, cookie := signIn(t, s, user.ID)

	t.Run("missing token is a silent no-op", func(t *testing.T) {
		resp := postForm(t, app, "/logout", url.Values{}, cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		_ = readBody(t, resp)

		_, err := s.sessions.Resolve(context.Background(), cookie.Value)
		assert.NoError(t, err, "session must survive a tokenless logout attempt")
	})

	t.Run("valid token ends the session", func(t *testing.T) {
		resp := postForm(t, app, "/logout", url.Values{
			"origin_token": {sess.OriginToken},
		}, cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		_ = readBody(t, resp)

		_, err := s.sessions.Resolve(context.Background(), cookie.Value)
		assert.Equal(t, session.ErrNoSession, err)
	})
}

func TestLikeToggle(t *testing.T) {
	s, app, db := setupTestServer(t)
	author := createUser(t, db, "author", "hunter22")
	fan := createUser(t, db, "fan", "hunter22")
	msg := &models.Message{Text: "like me", UserID: author.ID}
	require.NoError(t, db.Create(msg).Error)

	sess, cookie := signIn(t, s, fan.ID)

	t.Run("missing origin token redirects without liking", func(t *testing.T) {
		resp := postForm(t, app, "/likes/1/add", url.Values{}, cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		_ = readBody(t, resp)

		var count int64
		require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("toggle on then off", func(t *testing.T) {
		form := url.Values{"origin_token": {sess.OriginToken}}

		resp := postForm(t, app, "/likes/1/add", form, cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		_ = readBody(t, resp)

		var count int64
		require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		resp = postForm(t, app, "/likes/1/add", form, cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		_ = readBody(t, resp)

		require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("liking your own message is a bare 403", func(t *testing.T) {
		authorSess, authorCookie := signIn(t, s, author.ID)
		resp := postForm(t, app, "/likes/1/add", url.Values{
			"origin_token": {authorSess.OriginToken},
		}, authorCookie)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
	})

	t.Run("missing message is a 404", func(t *testing.T) {
		resp := postForm(t, app, "/likes/9999/add", url.Values{
			"origin_token": {sess.OriginToken},
		}, cookie)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = readBody(t, resp)
	})
}

func TestCreateAndDeleteMessage(t *testing.T) {
	s, app, db := setupTestServer(t)
	user := createUser(t, db, "tweetybird", "hunter22")
	_, cookie := signIn(t, s, user.ID)

	resp := postForm(t, app, "/messages/new", url.Values{
		"text": {"fresh warble"},
	}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_ = readBody(t, resp)

	var msg models.Message
	require.NoError(t, db.Where("text = ?", "fresh warble").First(&msg).Error)
	assert.Equal(t, user.ID, msg.UserID)

	t.Run("another user cannot delete it", func(t *testing.T) {
		other := createUser(t, db, "other", "hunter22")
		_, otherCookie := signIn(t, s, other.ID)

		resp := postForm(t, app, "/messages/1/delete", url.Values{}, otherCookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		_ = readBody(t, resp)

		var count int64
		require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("the author can delete it", func(t *testing.T) {
		resp := postForm(t, app, "/messages/1/delete", url.Values{}, cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		_ = readBody(t, resp)

		var count int64
		require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestFollowAndUnfollow(t *testing.T) {
	s, app, db := setupTestServer(t)
	viewer := createUser(t, db, "viewer", "hunter22")
	target := createUser(t, db, "target", "hunter22")
	_, cookie := signIn(t, s, viewer.ID)

	resp := postForm(t, app, "/users/follow/2", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users/1/following", resp.Header.Get("Location"))
	_ = readBody(t, resp)

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", viewer.ID, target.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp = postForm(t, app, "/users/stop-following/2", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_ = readBody(t, resp)

	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProfileEditWithWarmUserCache(t *testing.T) {
	s, app, db := setupTestServer(t)

	// Production wires the user cache; every signed-in page view warms it.
	// The edit must still re-authenticate against the real hash.
	cache.SetClient(s.redis)
	t.Cleanup(func() { cache.SetClient(nil) })

	user := createUser(t, db, "tweetybird", "hunter22")
	_, cookie := signIn(t, s, user.ID)

	resp := getPage(t, app, "/", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = readBody(t, resp)

	resp = postForm(t, app, "/users/profile", url.Values{
		"username": {"tweetybird"},
		"email":    {"tweetybird@example.com"},
		"bio":      {"still warbling"},
		"password": {"hunter22"},
	}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users/1", resp.Header.Get("Location"))
	_ = readBody(t, resp)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, "still warbling", fresh.Bio)
	assert.Equal(t, user.Password, fresh.Password, "the stored hash must survive the edit")

	t.Run("wrong password is still rejected", func(t *testing.T) {
		resp := postForm(t, app, "/users/profile", url.Values{
			"username": {"tweetybird"},
			"email":    {"tweetybird@example.com"},
			"password": {"wrong"},
		}, cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		_ = readBody(t, resp)
	})
}

func TestDeleteAccount(t *testing.T) {
	s, app, db := setupTestServer(t)
	user := createUser(t, db, "doomed", "hunter22")
	require.NoError(t, db.Create(&models.Message{Text: "gone soon", UserID: user.ID}).Error)
	_, cookie := signIn(t, s, user.ID)

	resp := postForm(t, app, "/users/delete", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))
	_ = readBody(t, resp)

	var users, messages int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Message{}).Count(&messages).Error)
	assert.Zero(t, users)
	assert.Zero(t, messages)

	_, err := s.sessions.Resolve(context.Background(), cookie.Value)
	assert.Equal(t, session.ErrNoSession, err)
}

func TestShowUserPage(t *testing.T) {
	s, app, db := setupTestServer(t)
	user := createUser(t, db, "tweetybird", "hunter22")
	require.NoError(t, db.Create(&models.Message{Text: "profile warble", UserID: user.ID}).Error)
	_, cookie := signIn(t, s, user.ID)

	resp := getPage(t, app, "/users/1", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "@tweetybird")
	assert.Contains(t, body, "profile warble")

	t.Run("unknown user is a 404", func(t *testing.T) {
		resp := getPage(t, app, "/users/9999", cookie)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = readBody(t, resp)
	})
}

func TestUserSearch(t *testing.T) {
	s, app, db := setupTestServer(t)
	viewer := createUser(t, db, "viewer", "hunter22")
	createUser(t, db, "bigbird", "hunter22")
	createUser(t, db, "roadrunner", "hunter22")
	_, cookie := signIn(t, s, viewer.ID)

	resp := getPage(t, app, "/users?q=bird", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "@bigbird")
	assert.NotContains(t, body, "@roadrunner")
}
