package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/checkout/internal/session"
)

// RegisterCheckoutRoutes wires checkout page endpoints.
func RegisterCheckoutRoutes(r fiber.Router, h *session.Handler, submitLimiter fiber.Handler) {
	grp := r.Group("/checkout")
	grp.Post("/sessions", h.Open)
	grp.Post("/sessions/:sessionId/card", h.CardChange)
	grp.Post("/sessions/:sessionId/submit", submitLimiter, h.Submit)
	grp.Get("/sessions/:sessionId/attempts", h.Attempts)
	grp.Delete("/sessions/:sessionId", h.Close)
	grp.Get("/attempts/:attemptId", h.Attempt)
}
