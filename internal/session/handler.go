package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/congo-pay/checkout/internal/attempts"
	"github.com/congo-pay/checkout/internal/checkout"
	"github.com/congo-pay/checkout/internal/logging"
	"github.com/congo-pay/checkout/internal/stripe"
)

const headerCSRFToken = "X-CSRFTOKEN"

// Handler exposes checkout sessions over HTTP.
type Handler struct {
	sessions *Registry
	attempts attempts.Repository
	logger   *slog.Logger
}

// NewHandler constructs a checkout session handler.
func NewHandler(sessions *Registry, repo attempts.Repository, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, attempts: repo, logger: logger}
}

// Open renders a new checkout page and mounts its card element.
func (h *Handler) Open(c *fiber.Ctx) error {
	var req OpenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	if req.CSRFToken == "" {
		req.CSRFToken = c.Get(headerCSRFToken)
	}

	// fiber strings point into pooled request buffers; the page outlives the request.
	s, err := h.sessions.Open(c.UserContext(), utils.CopyString(req.CSRFToken))
	if err != nil {
		h.log(c).Error("open checkout session", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "checkout is unavailable")
	}

	return c.Status(http.StatusCreated).JSON(OpenResponse{
		SessionID: s.ID,
		PublicKey: s.Controller.Config().PublicKey,
		Element: ElementConfig{
			Kind:     checkout.ElementKindCard,
			Selector: "#" + checkout.ElementCard,
			Options:  checkout.ElementOptions{Style: checkout.DefaultStyle()},
		},
	})
}

// CardChange relays the hosted card field's state to the mounted card.
func (h *Handler) CardChange(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	var req CardChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	card, ok := s.Controller.Card().(*stripe.Card)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "card element does not accept updates")
	}
	state := stripe.State{Token: utils.CopyString(req.Token), Complete: req.Complete}
	if req.Error != nil {
		state.Error = &checkout.ProviderError{
			Type:    utils.CopyString(req.Error.Type),
			Code:    utils.CopyString(req.Error.Code),
			Message: utils.CopyString(req.Error.Message),
		}
	}
	if err := card.Update(state); err != nil {
		return fiber.NewError(http.StatusConflict, err.Error())
	}

	return c.JSON(CardErrorsResponse{CardErrors: s.CardErrors()})
}

// Submit fills the form with the posted values and submits it.
func (h *Handler) Submit(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.CSRFToken == "" {
		req.CSRFToken = c.Get(headerCSRFToken)
	}
	values := req.values()
	for name, value := range values {
		values[name] = utils.CopyString(value)
	}
	s.Fill(values)

	ctx := c.UserContext()
	_, outcome, err := s.Page.Submit(ctx, checkout.FormID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	resp := SubmitResponse{Status: outcome.Status, CardErrors: s.CardErrors()}
	if outcome.Reply != nil {
		resp.BackendStatus = outcome.Reply.StatusCode
		resp.BackendResponse = outcome.Reply.Body
	}
	attempt, err := h.attempts.Record(ctx, attempts.FromOutcome(s.ID, outcome))
	if err != nil {
		h.log(c).Warn("record checkout attempt", slog.String("session_id", s.ID), slog.Any("error", err))
	} else {
		resp.AttemptID = attempt.ID
	}

	return c.Status(submitStatus(outcome.Status)).JSON(resp)
}

func submitStatus(status checkout.Status) int {
	switch status {
	case checkout.StatusSubmitted:
		return http.StatusCreated
	case checkout.StatusTokenizationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// Attempts lists the session's recorded attempts, newest first.
func (h *Handler) Attempts(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	list, err := h.attempts.ListBySession(c.UserContext(), s.ID, c.QueryInt("limit", 0))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []attempts.Attempt{}
	}
	return c.JSON(AttemptsResponse{Attempts: list})
}

// Attempt returns one recorded attempt.
func (h *Handler) Attempt(c *fiber.Ctx) error {
	a, err := h.attempts.Get(c.UserContext(), c.Params("attemptId"))
	if err != nil {
		if errors.Is(err, attempts.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(a)
}

// Close drops the session when the page unloads.
func (h *Handler) Close(c *fiber.Ctx) error {
	if !h.sessions.Close(c.Params("sessionId")) {
		return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) session(c *fiber.Ctx) (*Session, error) {
	s, err := h.sessions.Get(c.Params("sessionId"))
	if err != nil {
		return nil, fiber.NewError(http.StatusNotFound, err.Error())
	}
	return s, nil
}

func (h *Handler) log(c *fiber.Ctx) *slog.Logger {
	return logging.FromContext(c.UserContext(), h.logger)
}
