// Package backend forwards tokenized cards to the card-saving endpoint.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/congo-pay/checkout/internal/auth"
	"github.com/congo-pay/checkout/internal/checkout"
)

const (
	headerCSRFToken = "X-CSRFTOKEN"
	defaultTimeout  = 15 * time.Second
)

// StatusError is returned alongside the reply when the backend answers with a
// 4xx or 5xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.StatusCode)
}

// Client posts checkout submissions as JSON.
type Client struct {
	http   *resty.Client
	tokens auth.TokenSource
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds each request, including reading the reply.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.http.SetHeader("User-Agent", ua)
		}
	}
}

// New builds a Client that authenticates with tokens.
func New(tokens auth.TokenSource, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	c := &Client{
		http:   resty.New().SetTimeout(defaultTimeout),
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send posts the payload to sub.URL. The reply body is decoded as JSON when
// possible and kept as a string otherwise.
func (c *Client) Send(ctx context.Context, sub checkout.Submission) (checkout.Reply, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return checkout.Reply{}, fmt.Errorf("backend token: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+token).
		SetHeader(headerCSRFToken, sub.CSRFToken).
		SetBody(sub.Payload).
		Post(sub.URL)
	if err != nil {
		return checkout.Reply{}, fmt.Errorf("post %s: %w", sub.URL, err)
	}

	reply := checkout.Reply{StatusCode: resp.StatusCode(), Body: decode(resp.Body())}
	if resp.IsError() {
		return reply, &StatusError{StatusCode: resp.StatusCode()}
	}
	return reply, nil
}

func decode(raw []byte) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return body
}
