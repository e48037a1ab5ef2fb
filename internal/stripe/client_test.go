package stripe

import (
	"context"
	"errors"
	"testing"

	stripeapi "github.com/stripe/stripe-go/v81"

	"github.com/congo-pay/checkout/internal/checkout"
	"github.com/congo-pay/checkout/internal/logging"
)

func newMountedCard(t *testing.T, api SourceAPI) (*Client, *Card) {
	t.Helper()
	cl, err := New("pk_test_abc", api)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	el, err := cl.Elements().Create(checkout.ElementKindCard, checkout.ElementOptions{Style: checkout.DefaultStyle()})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	card := el.(*Card)
	if err := card.Mount("#card-element"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return cl, card
}

func TestNewRejectsSecretKeys(t *testing.T) {
	if _, err := New("sk_live_0123456789", &MockAPI{}); err == nil {
		t.Fatal("expected secret key to be rejected")
	}
	if _, err := New("pk_test_abc", nil); err == nil {
		t.Fatal("expected missing api to be rejected")
	}
}

func TestCreateRejectsOtherElementKinds(t *testing.T) {
	cl, err := New("pk_test_abc", &MockAPI{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := cl.Elements().Create("iban", checkout.ElementOptions{}); err == nil {
		t.Fatal("expected iban element to be rejected")
	}
}

func TestMountRules(t *testing.T) {
	cl, err := New("pk_test_abc", &MockAPI{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	el, _ := cl.Elements().Create(checkout.ElementKindCard, checkout.ElementOptions{})
	card := el.(*Card)

	if err := card.Update(State{Token: "tok_1", Complete: true}); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
	if err := card.Mount(".card"); err == nil {
		t.Fatal("expected class selector to be rejected")
	}

	ready := false
	if err := card.On("ready", func(checkout.ValidationEvent) { ready = true }); err != nil {
		t.Fatalf("subscribe ready: %v", err)
	}
	if err := card.Mount("#card-element"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if !ready || card.Selector() != "#card-element" {
		t.Fatalf("expected ready event and selector, got ready=%v selector=%q", ready, card.Selector())
	}
	if err := card.Mount("#other"); !errors.Is(err, ErrAlreadyMounted) {
		t.Fatalf("expected ErrAlreadyMounted, got %v", err)
	}
}

func TestUpdateEmitsChange(t *testing.T) {
	_, card := newMountedCard(t, &MockAPI{})

	var got []checkout.ValidationEvent
	if err := card.On(checkout.EventChange, func(ev checkout.ValidationEvent) { got = append(got, ev) }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	bad := &checkout.ProviderError{Code: "invalid_expiry_year", Message: "Your card's expiration year is invalid."}
	if err := card.Update(State{Error: bad}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := card.Update(State{Token: "tok_visa", Complete: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(got) != 2 || got[0].Error != bad || got[1].Error != nil {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestCreateSourceStates(t *testing.T) {
	ctx := context.Background()

	var params *stripeapi.SourceParams
	api := &MockAPI{FnNewSource: func(_ context.Context, p *stripeapi.SourceParams) (*stripeapi.Source, error) {
		params = p
		return &stripeapi.Source{ID: "src_123"}, nil
	}}
	cl, card := newMountedCard(t, api)

	res, err := cl.CreateSource(ctx, card)
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if res.Error == nil || res.Error.Code != "incomplete_number" {
		t.Fatalf("expected incomplete error, got %+v", res)
	}
	if params != nil {
		t.Fatal("stripe must not be called without a token")
	}

	pending := &checkout.ProviderError{Message: "Your card number is invalid."}
	card.Update(State{Token: "tok_visa", Complete: true, Error: pending})
	res, _ = cl.CreateSource(ctx, card)
	if res.Error != pending {
		t.Fatalf("expected pending validation error, got %+v", res)
	}

	card.Update(State{Token: "tok_visa", Complete: true})
	res, err = cl.CreateSource(ctx, card)
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if res.Source == nil || res.Source.ID != "src_123" {
		t.Fatalf("unexpected result %+v", res)
	}
	if stripeapi.StringValue(params.Type) != "card" || stripeapi.StringValue(params.Token) != "tok_visa" {
		t.Fatalf("unexpected params type=%q token=%q", stripeapi.StringValue(params.Type), stripeapi.StringValue(params.Token))
	}
}

func TestCreateSourceMapsStripeErrors(t *testing.T) {
	ctx := context.Background()

	declined := &stripeapi.Error{Type: stripeapi.ErrorTypeCard, Code: stripeapi.ErrorCodeCardDeclined, Msg: "Your card was declined."}
	cl, card := newMountedCard(t, &MockAPI{FnNewSource: func(context.Context, *stripeapi.SourceParams) (*stripeapi.Source, error) {
		return nil, declined
	}})
	card.Update(State{Token: "tok_chargeDeclined", Complete: true})

	res, err := cl.CreateSource(ctx, card)
	if err != nil {
		t.Fatalf("card errors must not be returned as errors: %v", err)
	}
	if res.Error == nil || res.Error.Message != "Your card was declined." || res.Error.Type != "card_error" {
		t.Fatalf("unexpected result %+v", res)
	}

	outage := errors.New("connection reset")
	cl, card = newMountedCard(t, &MockAPI{FnNewSource: func(context.Context, *stripeapi.SourceParams) (*stripeapi.Source, error) {
		return nil, outage
	}})
	card.Update(State{Token: "tok_visa", Complete: true})
	if _, err := cl.CreateSource(ctx, card); !errors.Is(err, outage) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestCreateSourceRejectsForeignCards(t *testing.T) {
	a, _ := newMountedCard(t, &MockAPI{})
	_, card := newMountedCard(t, &MockAPI{})
	if _, err := a.CreateSource(context.Background(), card); !errors.Is(err, ErrForeignCard) {
		t.Fatalf("expected ErrForeignCard, got %v", err)
	}
}

func TestControllerWithStripeProvider(t *testing.T) {
	page := checkout.NewPage().
		WithText(checkout.ElementPublicKey, "pk_test_abc").
		WithText(checkout.ElementSubmitURL, "https://shop.example.com/cards/").
		WithText(checkout.ElementCard, "").
		WithText(checkout.ElementCardErrors, "").
		WithForm(checkout.FormID).
		WithInput(checkout.InputCSRFToken, "csrf")
	for _, name := range checkout.BillingInputs {
		page.WithInput(name, "")
	}

	sender := &recordingSender{}
	ctrl, err := checkout.Init(page, Factory(&MockAPI{}), sender, checkout.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	card := ctrl.Card().(*Card)

	card.Update(State{Error: &checkout.ProviderError{Message: "Your card number is incomplete."}})
	if text, _ := page.Text(checkout.ElementCardErrors); text != "Your card number is incomplete." {
		t.Fatalf("expected change to reach the page, got %q", text)
	}

	card.Update(State{Token: "tok_4242", Complete: true})
	outcome := ctrl.Submit(context.Background(), checkout.NewSubmitEvent())
	if outcome.Status != checkout.StatusSubmitted || sender.last.Payload.StripeSrc != "src_4242" {
		t.Fatalf("unexpected outcome %+v sent %+v", outcome, sender.last)
	}
}

type recordingSender struct {
	last checkout.Submission
}

func (s *recordingSender) Send(_ context.Context, sub checkout.Submission) (checkout.Reply, error) {
	s.last = sub
	return checkout.Reply{StatusCode: 201}, nil
}
