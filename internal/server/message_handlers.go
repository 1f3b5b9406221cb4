package server

import (
	"errors"
	"fmt"

	"github.com/cli3338198/warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ShowNewMessage renders the new-message form.
func (s *Server) ShowNewMessage(c *fiber.Ctx) error {
	return s.render(c, "messages/new", fiber.Map{
		"Text": "",
	})
}

// CreateMessage posts a new message for the viewer.
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	text := c.FormValue("text")

	if _, err := s.messageService.Create(c.UserContext(), viewerID, text); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
			s.setFlash(c, "danger", appErr.Message)
			return s.render(c, "messages/new", fiber.Map{
				"Text": text,
			})
		}
		return s.renderAppError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/users/%d", viewerID), fiber.StatusSeeOther)
}

// ShowMessage renders a single message.
func (s *Server) ShowMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	message, err := s.messageService.GetByID(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return s.renderAppError(c, err)
	}

	return s.render(c, "messages/show", fiber.Map{
		"Message": message,
	})
}

// DeleteMessage removes one of the viewer's own messages.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	viewerID := currentUserID(c)
	if err := s.messageService.Delete(c.UserContext(), id, viewerID); err != nil {
		if models.ErrorCode(err) == models.CodeForbidden {
			s.setFlash(c, "danger", "Access unauthorized.")
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return s.renderAppError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/users/%d", viewerID), fiber.StatusSeeOther)
}

// ToggleLike flips the viewer's like on a message. The origin token guards
// the toggle against cross-site posts; a self-like is a bare 403 with no
// page body.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	if !s.checkOriginToken(c) {
		s.setFlash(c, "danger", "Access unauthorized.")
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	if _, err := s.messageService.ToggleLike(c.UserContext(), id, currentUserID(c)); err != nil {
		switch models.ErrorCode(err) {
		case models.CodeForbidden:
			// Bare status, no page body.
			return c.Status(fiber.StatusForbidden).SendString("")
		case models.CodeNotFound:
			return s.renderNotFound(c)
		default:
			return s.renderAppError(c, err)
		}
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}
