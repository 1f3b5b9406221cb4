package server

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cli3338198/warbler/internal/middleware"
	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// CurrentUser resolves the session cookie and, when valid, exposes the
// signed-in user via locals. Anonymous requests pass through untouched.
func (s *Server) CurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(session.CookieName)
		if cookie == "" {
			return c.Next()
		}

		sess, err := s.sessions.Resolve(c.UserContext(), cookie)
		if err != nil {
			if err != session.ErrNoSession {
				middleware.Logger.ErrorContext(c.UserContext(), "session resolve failed", slog.Any("error", err))
			}
			s.clearSessionCookie(c)
			return c.Next()
		}

		user, err := s.userRepo.GetByID(c.UserContext(), sess.UserID)
		if err != nil {
			// The account behind this session is gone. Drop the session.
			_ = s.sessions.Destroy(c.UserContext(), sess.ID)
			s.clearSessionCookie(c)
			return c.Next()
		}

		c.Locals("userID", sess.UserID)
		c.Locals("currentUser", user)
		c.Locals("session", sess)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, sess.UserID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequireUser redirects anonymous visitors to the landing page with an
// "Access unauthorized." notice.
func (s *Server) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("userID").(uint); !ok {
			s.setFlash(c, "danger", "Access unauthorized.")
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

func currentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals("currentUser").(*models.User); ok {
		return user
	}
	return nil
}

func currentSession(c *fiber.Ctx) *session.Session {
	if sess, ok := c.Locals("session").(*session.Session); ok {
		return sess
	}
	return nil
}

// checkOriginToken verifies the form's origin token against the session's.
// State-changing form posts carry it to stop cross-site requests.
func (s *Server) checkOriginToken(c *fiber.Ctx) bool {
	sess := currentSession(c)
	if sess == nil {
		return false
	}
	token := c.FormValue("origin_token")
	return token != "" && token == sess.OriginToken
}

func (s *Server) setSessionCookie(c *fiber.Ctx, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(s.config.SessionTTL),
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// parseID reads a numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, models.NewValidationError("invalid id")
	}
	return uint(id), nil
}

// render draws a page inside the main layout, injecting the viewer, any
// pending flash, and the origin token for forms.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["CurrentUser"] = currentUser(c)
	data["Flashes"] = s.takeFlash(c)
	if sess := currentSession(c); sess != nil {
		data["OriginToken"] = sess.OriginToken
	}
	return c.Render(name, data)
}

func (s *Server) renderNotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return s.render(c, "404", nil)
}

func (s *Server) renderServerError(c *fiber.Ctx) error {
	c.Status(fiber.StatusInternalServerError)
	return s.render(c, "500", nil)
}

// renderAppError maps a service error onto the HTML surface: missing
// resources get the 404 page, everything unexpected gets the 500 page.
func (s *Server) renderAppError(c *fiber.Ctx, err error) error {
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return s.renderNotFound(c)
	default:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", slog.Any("error", err))
		return s.renderServerError(c)
	}
}
