package middleware

import "github.com/gofiber/fiber/v2"

// NoCache sets a no-store cache directive on every response so browsers and
// proxies never serve a stale page after a login/logout or a like toggle.
func NoCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		c.Set(fiber.HeaderCacheControl, "no-store")
		return err
	}
}
