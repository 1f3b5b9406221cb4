package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cli3338198/warbler/internal/middleware"
	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Home renders the signed-in feed, or the landing page for visitors.
func (s *Server) Home(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.render(c, "home-anon", nil)
	}

	feed, err := s.feedService.BuildFeed(c.UserContext(), user.ID)
	if err != nil {
		return s.renderAppError(c, err)
	}
	return s.render(c, "home", fiber.Map{
		"Messages": feed,
	})
}

// ShowSignup renders the signup form.
func (s *Server) ShowSignup(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, "signup", fiber.Map{
		"Username": "",
		"Email":    "",
		"ImageURL": "",
	})
}

// Signup creates an account and signs the new user in.
func (s *Server) Signup(c *fiber.Ctx) error {
	input := service.SignupInput{
		Username: strings.TrimSpace(c.FormValue("username")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Password: c.FormValue("password"),
		ImageURL: strings.TrimSpace(c.FormValue("image_url")),
	}

	user, err := s.authService.Signup(c.UserContext(), input)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			return s.renderAppError(c, err)
		}
		switch appErr.Code {
		case models.CodeDuplicateIdentity:
			s.setFlash(c, "danger", "Username already taken")
		case models.CodeValidation:
			s.setFlash(c, "danger", appErr.Message)
		default:
			return s.renderAppError(c, err)
		}
		// Re-render the form with what the user typed, minus the password.
		return s.render(c, "signup", fiber.Map{
			"Username": input.Username,
			"Email":    input.Email,
			"ImageURL": input.ImageURL,
		})
	}

	if err := s.startSession(c, user.ID); err != nil {
		return s.renderAppError(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// ShowLogin renders the login form.
func (s *Server) ShowLogin(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, "login", fiber.Map{
		"Username": "",
	})
}

// Login verifies credentials and starts a session.
func (s *Server) Login(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	user, err := s.authService.Authenticate(c.UserContext(), username, password)
	if err != nil {
		return s.renderAppError(c, err)
	}
	if user == nil {
		s.setFlash(c, "danger", "Invalid credentials.")
		return s.render(c, "login", fiber.Map{
			"Username": username,
		})
	}

	if err := s.startSession(c, user.ID); err != nil {
		return s.renderAppError(c, err)
	}
	s.setFlash(c, "success", fmt.Sprintf("Hello, %s!", user.Username))
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout destroys the session. A missing or wrong origin token makes this
// a silent redirect so a forged cross-site post cannot log anyone out.
func (s *Server) Logout(c *fiber.Ctx) error {
	sess := currentSession(c)
	if sess == nil || !s.checkOriginToken(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	if err := s.sessions.Destroy(c.UserContext(), sess.ID); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "session destroy failed", slog.Any("error", err))
	}
	s.clearSessionCookie(c)
	s.setFlash(c, "success", "You have successfully logged out.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// startSession opens a fresh session for userID and sets its cookie.
func (s *Server) startSession(c *fiber.Ctx, userID uint) error {
	_, cookie, err := s.sessions.Create(c.UserContext(), userID)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, cookie)
	return nil
}
