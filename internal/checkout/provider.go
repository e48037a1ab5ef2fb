package checkout

import "context"

// Provider is the hosted payment-field service: it hands out card elements
// and exchanges a mounted card for a one-time payment source.
type Provider interface {
	Elements() Elements
	CreateSource(ctx context.Context, card Card) (SourceResult, error)
}

// ProviderFactory builds a Provider from the page's public API key.
type ProviderFactory func(publicKey string) (Provider, error)

// Elements creates UI elements of a given kind.
type Elements interface {
	Create(kind string, opts ElementOptions) (Card, error)
}

// Card is the handle to a mounted card-input widget.
type Card interface {
	Mount(selector string) error
	On(event string, handler func(ValidationEvent)) error
}

// ElementOptions are passed to Elements.Create.
type ElementOptions struct {
	Style Style `json:"style"`
}

// Style configures the card element for its normal and invalid states.
type Style struct {
	Base    StyleVariant `json:"base"`
	Invalid StyleVariant `json:"invalid"`
}

// StyleVariant holds the CSS-like properties the provider understands.
type StyleVariant struct {
	Color         string        `json:"color,omitempty"`
	IconColor     string        `json:"iconColor,omitempty"`
	FontFamily    string        `json:"fontFamily,omitempty"`
	FontSmoothing string        `json:"fontSmoothing,omitempty"`
	FontSize      string        `json:"fontSize,omitempty"`
	Placeholder   *StyleVariant `json:"::placeholder,omitempty"`
}

// DefaultStyle is the look every checkout card element is created with.
func DefaultStyle() Style {
	return Style{
		Base: StyleVariant{
			Color:         "#32325d",
			FontFamily:    `"Helvetica Neue", Helvetica, sans-serif`,
			FontSmoothing: "antialiased",
			FontSize:      "16px",
			Placeholder:   &StyleVariant{Color: "#aab7c4"},
		},
		Invalid: StyleVariant{
			Color:     "#fa755a",
			IconColor: "#fa755a",
		},
	}
}
