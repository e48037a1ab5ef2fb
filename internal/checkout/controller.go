package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Controller wires a mounted card widget to the checkout form. One controller
// lives for the lifetime of one page.
type Controller struct {
	cfg    Config
	doc    Document
	client Provider
	card   Card
	sender Sender
	logger *slog.Logger
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger backend replies and failures are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Init reads the page configuration, creates and mounts the card element and
// subscribes the change and submit handlers.
func Init(doc Document, newProvider ProviderFactory, sender Sender, opts ...Option) (*Controller, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}
	if newProvider == nil {
		return nil, errors.New("provider factory is required")
	}
	if sender == nil {
		return nil, errors.New("sender is required")
	}

	cfg, form, err := readPage(doc)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:    cfg,
		doc:    doc,
		sender: sender,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	client, err := newProvider(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	card, err := client.Elements().Create(ElementKindCard, ElementOptions{Style: DefaultStyle()})
	if err != nil {
		return nil, fmt.Errorf("create card element: %w", err)
	}
	if err := card.Mount("#" + ElementCard); err != nil {
		return nil, fmt.Errorf("mount card element: %w", err)
	}
	if err := card.On(EventChange, c.HandleChange); err != nil {
		return nil, fmt.Errorf("subscribe card changes: %w", err)
	}
	c.client = client
	c.card = card
	form.OnSubmit(c.Submit)

	return c, nil
}

func readPage(doc Document) (Config, Form, error) {
	cfgErr := &ConfigError{}

	text := func(id string) string {
		v, ok := doc.Text(id)
		if !ok {
			cfgErr.Missing = append(cfgErr.Missing, "#"+id)
		}
		return strings.TrimSpace(v)
	}
	cfg := Config{
		PublicKey: text(ElementPublicKey),
		SubmitURL: text(ElementSubmitURL),
	}
	text(ElementCard)
	text(ElementCardErrors)

	form, ok := doc.Form(FormID)
	if !ok {
		cfgErr.Missing = append(cfgErr.Missing, "form#"+FormID)
	}
	for _, name := range append([]string{InputCSRFToken}, BillingInputs...) {
		if _, ok := doc.Value(name); !ok {
			cfgErr.Missing = append(cfgErr.Missing, "input[name="+name+"]")
		}
	}
	cfg.CSRFToken, _ = doc.Value(InputCSRFToken)

	if _, ok := doc.Text(ElementPublicKey); ok && cfg.PublicKey == "" {
		cfgErr.Empty = append(cfgErr.Empty, "#"+ElementPublicKey)
	}
	if _, ok := doc.Text(ElementSubmitURL); ok && cfg.SubmitURL == "" {
		cfgErr.Empty = append(cfgErr.Empty, "#"+ElementSubmitURL)
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Empty) > 0 {
		return Config{}, nil, cfgErr
	}
	return cfg, form, nil
}

// Config returns the configuration read at initialization.
func (c *Controller) Config() Config {
	return c.cfg
}

// Card returns the mounted card element.
func (c *Controller) Card() Card {
	return c.card
}

// HandleChange mirrors the widget's validation state into the error region.
func (c *Controller) HandleChange(ev ValidationEvent) {
	if ev.Error != nil {
		c.display(ev.Error.Message)
		return
	}
	c.display("")
}

// Submit cancels native submission, tokenizes the card once and forwards the
// source id with the billing fields to the submit URL.
func (c *Controller) Submit(ctx context.Context, ev *SubmitEvent) Outcome {
	if ev != nil {
		ev.PreventDefault()
	}

	result, err := c.client.CreateSource(ctx, c.card)
	if err != nil {
		c.logger.Warn("create source failed", slog.Any("error", err))
		return c.fail(StatusTokenizationFailed, MessageProviderUnavailable, "", nil, err)
	}
	if result.Error != nil {
		return c.fail(StatusTokenizationFailed, result.Error.Message, "", nil, result.Error)
	}
	if result.Source == nil || result.Source.ID == "" {
		err := errors.New("provider returned no payment source")
		c.logger.Warn("create source failed", slog.Any("error", err))
		return c.fail(StatusTokenizationFailed, MessageProviderUnavailable, "", nil, err)
	}

	sourceID := result.Source.ID
	csrfToken, _ := c.doc.Value(InputCSRFToken)
	sub := Submission{
		URL:       c.cfg.SubmitURL,
		CSRFToken: csrfToken,
		Payload: Payload{
			StripeSrc:     sourceID,
			BillingFields: c.billing(),
		},
	}

	reply, err := c.sender.Send(ctx, sub)
	if err == nil && (reply.StatusCode < 200 || reply.StatusCode > 299) {
		err = fmt.Errorf("backend responded with status %d", reply.StatusCode)
	}
	if err != nil {
		c.logger.Warn("submit card failed",
			slog.Int("status", reply.StatusCode),
			slog.Any("response", reply.Body),
			slog.Any("error", err),
		)
		msg := backendMessage(reply.Body)
		if msg == "" {
			msg = MessageBackendUnavailable
		}
		var replied *Reply
		if reply.StatusCode != 0 {
			replied = &reply
		}
		return c.fail(StatusBackendFailed, msg, sourceID, replied, err)
	}

	c.logger.Info("card submitted", slog.Int("status", reply.StatusCode), slog.Any("response", reply.Body))
	c.display("")
	return Outcome{Status: StatusSubmitted, SourceID: sourceID, Reply: &reply}
}

func (c *Controller) fail(status Status, msg, sourceID string, reply *Reply, err error) Outcome {
	c.display(msg)
	return Outcome{Status: status, Display: msg, SourceID: sourceID, Reply: reply, Err: err}
}

func (c *Controller) display(msg string) {
	if !c.doc.SetText(ElementCardErrors, msg) {
		c.logger.Error("error region disappeared", slog.String("element", ElementCardErrors))
	}
}

func (c *Controller) billing() BillingFields {
	value := func(name string) string {
		v, _ := c.doc.Value(name)
		return v
	}
	return BillingFields{
		Line1:     value(InputLine1),
		Line2:     value(InputLine2),
		City:      value(InputCity),
		State:     value(InputState),
		Zipcode:   value(InputZipcode),
		Country:   value(InputCountry),
		FirstName: value(InputFirstName),
		LastName:  value(InputLastName),
		Email:     value(InputEmail),
	}
}

// backendMessage digs a user-facing message out of an error reply.
func backendMessage(body any) string {
	doc, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"detail", "message", "error", "non_field_errors", "stripe_src"} {
		switch v := doc[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}
