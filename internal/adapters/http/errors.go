package http

import "github.com/gofiber/fiber/v2"

// errorEnvelope is the uniform failure payload of the public API:
// {"status":"error","error":"..."}. Every failure, from validation to
// Earth Engine call errors, is surfaced this way with a non-2xx code;
// nothing is retried locally.
type errorEnvelope struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newError(c *fiber.Ctx, status int, msg string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(errorEnvelope{
		Status:    "error",
		Error:     msg,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error envelope.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, msg)
}

// errInternal returns a 500 error envelope.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, msg)
}
