package http

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed monitor.html
var monitorHTML []byte

// IndexHandler returns a plain banner pointing at the monitoring UI.
func IndexHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString("EarthLens backend is running. Visit /monitor for the monitoring UI.")
	}
}

// MonitorHandler serves the embedded single-page front end.
func MonitorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(monitorHTML)
	}
}
