// Package session implements the session gate: it resolves a request cookie
// to an authenticated user or anonymous, and owns the per-session origin
// token required on state-changing POSTs.
//
// Session state lives in Redis under sess:<id>. The cookie itself carries an
// HS256-signed token whose jti is the session id, so a forged or tampered
// cookie is rejected before Redis is ever consulted.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the name of the session cookie.
const CookieName = "warbler_session"

const (
	keyPrefix     = "sess:"
	tokenIssuer   = "warbler"
	tokenAudience = "warbler-web"
)

// ErrNoSession is returned when a cookie does not resolve to a live session.
var ErrNoSession = errors.New("no active session")

// Session is a live authenticated session.
type Session struct {
	ID          string
	UserID      uint
	OriginToken string
}

// Manager creates, resolves and destroys sessions.
type Manager struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewManager returns a Manager backed by the given Redis client.
func NewManager(rdb *redis.Client, secret string, ttl time.Duration) *Manager {
	return &Manager{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Create stores a new session for userID and returns it together with the
// signed cookie value. The origin token is bound to the session and must be
// echoed back by forms that perform logout or like toggles.
func (m *Manager) Create(ctx context.Context, userID uint) (*Session, string, error) {
	if m.rdb == nil {
		return nil, "", fmt.Errorf("session store unavailable")
	}

	sess := &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		OriginToken: uuid.NewString(),
	}

	key := sessionKey(sess.ID)
	if err := m.rdb.HSet(ctx, key,
		"user_id", strconv.FormatUint(uint64(userID), 10),
		"origin_token", sess.OriginToken,
	).Err(); err != nil {
		return nil, "", fmt.Errorf("store session: %w", err)
	}
	if err := m.rdb.Expire(ctx, key, m.ttl).Err(); err != nil {
		return nil, "", fmt.Errorf("expire session: %w", err)
	}

	cookie, err := m.signCookie(sess)
	if err != nil {
		m.rdb.Del(ctx, key)
		return nil, "", err
	}
	return sess, cookie, nil
}

func (m *Manager) signCookie(sess *Session) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(sess.UserID), 10),
		"jti": sess.ID,
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(m.ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Resolve validates the cookie value and loads the referenced session.
// Any signature, claim or lookup failure collapses to ErrNoSession; the
// caller treats the request as anonymous.
func (m *Manager) Resolve(ctx context.Context, cookie string) (*Session, error) {
	if m.rdb == nil || cookie == "" {
		return nil, ErrNoSession
	}

	token, err := jwt.Parse(cookie, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNoSession
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return nil, ErrNoSession
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return nil, ErrNoSession
	}
	id, ok := claims["jti"].(string)
	if !ok || id == "" {
		return nil, ErrNoSession
	}

	vals, err := m.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(vals) == 0 {
		// Logged out, expired, or revoked by self-delete.
		return nil, ErrNoSession
	}

	userID, err := strconv.ParseUint(vals["user_id"], 10, 32)
	if err != nil {
		return nil, ErrNoSession
	}

	// Sliding expiration: activity keeps the session alive.
	m.rdb.Expire(ctx, sessionKey(id), m.ttl)

	return &Session{
		ID:          id,
		UserID:      uint(userID),
		OriginToken: vals["origin_token"],
	}, nil
}

// Destroy removes the session record. The cookie becomes useless immediately
// even though it remains on the client until overwritten.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if m.rdb == nil || id == "" {
		return nil
	}
	return m.rdb.Del(ctx, sessionKey(id)).Err()
}
