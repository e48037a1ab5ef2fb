package stripe

import (
	"context"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v81"
)

// MockAPI is a SourceAPI for tests and local development.
type MockAPI struct {
	FnNewSource func(ctx context.Context, params *stripeapi.SourceParams) (*stripeapi.Source, error)
}

func (m *MockAPI) NewSource(ctx context.Context, params *stripeapi.SourceParams) (*stripeapi.Source, error) {
	if m.FnNewSource == nil {
		token := stripeapi.StringValue(params.Token)
		return &stripeapi.Source{ID: "src_" + strings.TrimPrefix(token, "tok_")}, nil
	}

	return m.FnNewSource(ctx, params)
}
