package server

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookieName = "warbler_flash"

// Flash is a one-shot notice surfaced on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// setFlash queues a notice for the next page load. It rides a short-lived
// cookie rather than the session record so anonymous visitors can be
// flashed too (e.g. "Access unauthorized." before a redirect to /).
func (s *Server) setFlash(c *fiber.Ctx, category, message string) {
	// Keep it in locals too so a page rendered in this same request can
	// show it; the cookie only surfaces on the next request.
	c.Locals("pendingFlash", Flash{Category: category, Message: message})
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		Expires:  time.Now().Add(5 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// takeFlash reads and clears the pending notice, if any.
func (s *Server) takeFlash(c *fiber.Ctx) []Flash {
	if pending, ok := c.Locals("pendingFlash").(Flash); ok {
		c.Locals("pendingFlash", nil)
		s.expireFlashCookie(c)
		return []Flash{pending}
	}

	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return nil
	}

	s.expireFlashCookie(c)

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	category, message, found := strings.Cut(decoded, "|")
	if !found || message == "" {
		return nil
	}
	return []Flash{{Category: category, Message: message}}
}

func (s *Server) expireFlashCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
