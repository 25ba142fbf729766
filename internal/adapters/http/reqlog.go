package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/earthlens/earthlens/internal/pkg/logging"
)

// RequestIDLogMiddleware injects a request-scoped *slog.Logger with the
// Fiber request ID baked in into the user context, so the usecase and
// adapter layers can log with correlation via logging.FromContext.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, ok := c.Locals("requestid").(string)
		if !ok || rid == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", rid)
		c.SetUserContext(logging.IntoContext(c.UserContext(), reqLogger))

		return c.Next()
	}
}
