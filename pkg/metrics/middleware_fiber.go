package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// FiberMiddleware records request count and latency per matched route.
func FiberMiddleware(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.RecordHTTPRequest(c.Route().Path, c.Method(), status, time.Since(start))
		return err
	}
}

// FiberHandler exposes the registry on a fiber route.
func FiberHandler(m *Manager) fiber.Handler {
	return adaptor.HTTPHandler(m.Handler())
}
