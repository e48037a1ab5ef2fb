// Package stripe implements the checkout card provider on top of Stripe
// Sources. The browser's hosted card field reports its token and validation
// state to a Card; CreateSource exchanges that token for a one-time source.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/congo-pay/checkout/internal/checkout"
)

var (
	// ErrNotMounted is returned when a card is used before Mount.
	ErrNotMounted = errors.New("card element is not mounted")
	// ErrAlreadyMounted is returned when Mount is called twice.
	ErrAlreadyMounted = errors.New("card element is already mounted")
	// ErrForeignCard is returned when a card from another client is tokenized.
	ErrForeignCard = errors.New("card element was not created by this client")
)

// SourceAPI is the part of the Stripe API the provider calls.
type SourceAPI interface {
	NewSource(ctx context.Context, params *stripeapi.SourceParams) (*stripeapi.Source, error)
}

type sourceAPI struct {
	cl *client.API
}

// NewAPI returns a SourceAPI backed by a Stripe client using secretKey.
func NewAPI(secretKey string) SourceAPI {
	return &sourceAPI{cl: client.New(secretKey, nil)}
}

func (a *sourceAPI) NewSource(ctx context.Context, params *stripeapi.SourceParams) (*stripeapi.Source, error) {
	params.Context = ctx
	return a.cl.Sources.New(params)
}

// Client is a checkout.Provider for one page, bound to its publishable key.
type Client struct {
	publicKey string
	api       SourceAPI
}

// New validates the publishable key and returns a provider client.
func New(publicKey string, api SourceAPI) (*Client, error) {
	publicKey = strings.TrimSpace(publicKey)
	if !strings.HasPrefix(publicKey, "pk_") {
		return nil, fmt.Errorf("stripe: %q is not a publishable key", redact(publicKey))
	}
	if api == nil {
		return nil, errors.New("stripe: source api is required")
	}
	return &Client{publicKey: publicKey, api: api}, nil
}

// Factory adapts New to checkout.ProviderFactory, sharing api across pages.
func Factory(api SourceAPI) checkout.ProviderFactory {
	return func(publicKey string) (checkout.Provider, error) {
		return New(publicKey, api)
	}
}

// PublicKey returns the publishable key the client was built with.
func (c *Client) PublicKey() string {
	return c.publicKey
}

func (c *Client) Elements() checkout.Elements {
	return elements{client: c}
}

type elements struct {
	client *Client
}

func (e elements) Create(kind string, opts checkout.ElementOptions) (checkout.Card, error) {
	if kind != checkout.ElementKindCard {
		return nil, fmt.Errorf("stripe: unsupported element kind %q", kind)
	}
	return newCard(e.client, opts), nil
}

// CreateSource exchanges the card's current token for a card Source. Card
// errors reported by Stripe come back in the result, not as an error.
func (c *Client) CreateSource(ctx context.Context, card checkout.Card) (checkout.SourceResult, error) {
	sc, ok := card.(*Card)
	if !ok || sc.client != c {
		return checkout.SourceResult{}, ErrForeignCard
	}
	state, mounted := sc.snapshot()
	if !mounted {
		return checkout.SourceResult{}, ErrNotMounted
	}
	if state.Error != nil {
		return checkout.SourceResult{Error: state.Error}, nil
	}
	if state.Token == "" || !state.Complete {
		return checkout.SourceResult{Error: &checkout.ProviderError{
			Type:    "validation_error",
			Code:    "incomplete_number",
			Message: "Your card number is incomplete.",
		}}, nil
	}

	params := &stripeapi.SourceParams{
		Type:  stripeapi.String("card"),
		Token: stripeapi.String(state.Token),
	}
	src, err := c.api.NewSource(ctx, params)
	if err != nil {
		var serr *stripeapi.Error
		if errors.As(err, &serr) && (serr.Type == stripeapi.ErrorTypeCard || serr.Type == stripeapi.ErrorTypeInvalidRequest) {
			return checkout.SourceResult{Error: &checkout.ProviderError{
				Type:    string(serr.Type),
				Code:    string(serr.Code),
				Message: serr.Msg,
			}}, nil
		}
		return checkout.SourceResult{}, fmt.Errorf("stripe: create source: %w", err)
	}
	if src == nil || src.ID == "" {
		return checkout.SourceResult{}, errors.New("stripe: empty source returned")
	}
	return checkout.SourceResult{Source: &checkout.PaymentSource{ID: src.ID}}, nil
}

func redact(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}
