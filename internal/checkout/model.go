package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Element and input identifiers the controller expects on the checkout page.
const (
	ElementPublicKey  = "pub-key"
	ElementSubmitURL  = "url"
	ElementCard       = "card-element"
	ElementCardErrors = "card-errors"
	FormID            = "stripe-form"
	InputCSRFToken    = "csrfmiddlewaretoken"
)

// Billing input names, in the order they appear in the outbound payload.
const (
	InputLine1     = "line1"
	InputLine2     = "line2"
	InputCity      = "city"
	InputState     = "state"
	InputZipcode   = "zipcode"
	InputCountry   = "country"
	InputFirstName = "first_name"
	InputLastName  = "last_name"
	InputEmail     = "email"
)

// BillingInputs lists every billing input read at submit time.
var BillingInputs = []string{
	InputLine1, InputLine2, InputCity, InputState, InputZipcode,
	InputCountry, InputFirstName, InputLastName, InputEmail,
}

const (
	// EventChange is emitted by a card widget whenever its validation state changes.
	EventChange = "change"
	// ElementKindCard is the only element kind the controller creates.
	ElementKindCard = "card"
)

// ErrMissingElement reports an element or input absent from the page.
var ErrMissingElement = errors.New("missing page element")

// MessageBackendUnavailable is shown when the card could not be forwarded and
// the backend gave no message of its own.
const MessageBackendUnavailable = "We could not save your card right now. Please try again."

// MessageProviderUnavailable is shown when the card could not be tokenized and
// the provider gave no message of its own.
const MessageProviderUnavailable = "We could not verify your card right now. Please try again."

// Config is read once from the page when the controller initializes.
type Config struct {
	PublicKey string
	SubmitURL string
	CSRFToken string
}

// ConfigError lists every element the page was missing or left empty.
type ConfigError struct {
	Missing []string
	Empty   []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Empty) > 0 {
		parts = append(parts, "empty "+strings.Join(e.Empty, ", "))
	}
	return fmt.Sprintf("checkout page misconfigured: %s", strings.Join(parts, "; "))
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingElement
}

// ProviderError is the error payload a card provider attaches to validation
// events and failed tokenization results.
type ProviderError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return e.Message
}

// ValidationEvent is delivered by the card widget on every user interaction.
type ValidationEvent struct {
	Error *ProviderError
}

// PaymentSource is the one-time token the provider returns for the card.
type PaymentSource struct {
	ID string
}

// SourceResult mirrors the provider's {error?, source?} response.
type SourceResult struct {
	Source *PaymentSource
	Error  *ProviderError
}

// BillingFields are read from the form at the moment of submission.
type BillingFields struct {
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Payload is the JSON body posted to the submit URL.
type Payload struct {
	StripeSrc string `json:"stripe_src"`
	BillingFields
}

// Submission is everything a Sender needs for one outbound request.
type Submission struct {
	URL       string
	CSRFToken string
	Payload   Payload
}

// Reply is the backend's answer. Body holds the decoded JSON document.
type Reply struct {
	StatusCode int
	Body       any
}

// Sender delivers a submission to the backend.
type Sender interface {
	Send(ctx context.Context, sub Submission) (Reply, error)
}

// Status summarizes how a submit pass ended.
type Status string

const (
	StatusTokenizationFailed Status = "tokenization_failed"
	StatusSubmitted          Status = "submitted"
	StatusBackendFailed      Status = "backend_failed"
)

// Outcome describes a single submit pass.
type Outcome struct {
	Status   Status
	Display  string
	SourceID string
	Reply    *Reply
	Err      error
}
