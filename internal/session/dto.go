package session

import (
	"github.com/congo-pay/checkout/internal/attempts"
	"github.com/congo-pay/checkout/internal/checkout"
)

// OpenRequest starts a checkout page.
type OpenRequest struct {
	CSRFToken string `json:"csrf_token" form:"csrf_token"`
}

// ElementConfig tells the browser how to mount the hosted card field.
type ElementConfig struct {
	Kind     string                  `json:"kind"`
	Selector string                  `json:"selector"`
	Options  checkout.ElementOptions `json:"options"`
}

// OpenResponse is returned when a checkout page is opened.
type OpenResponse struct {
	SessionID string        `json:"session_id"`
	PublicKey string        `json:"public_key"`
	Element   ElementConfig `json:"element"`
}

// CardChangeRequest is what the hosted card field reports on every change.
type CardChangeRequest struct {
	Token    string                  `json:"token" form:"token"`
	Complete bool                    `json:"complete" form:"complete"`
	Error    *checkout.ProviderError `json:"error" form:"-"`
}

// CardErrorsResponse carries the error region's text.
type CardErrorsResponse struct {
	CardErrors string `json:"card_errors"`
}

// SubmitRequest is the checkout form as posted by the browser.
type SubmitRequest struct {
	CSRFToken string `json:"csrfmiddlewaretoken" form:"csrfmiddlewaretoken"`
	Line1     string `json:"line1" form:"line1"`
	Line2     string `json:"line2" form:"line2"`
	City      string `json:"city" form:"city"`
	State     string `json:"state" form:"state"`
	Zipcode   string `json:"zipcode" form:"zipcode"`
	Country   string `json:"country" form:"country"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Email     string `json:"email" form:"email"`
}

func (r SubmitRequest) values() map[string]string {
	values := map[string]string{
		checkout.InputLine1:     r.Line1,
		checkout.InputLine2:     r.Line2,
		checkout.InputCity:      r.City,
		checkout.InputState:     r.State,
		checkout.InputZipcode:   r.Zipcode,
		checkout.InputCountry:   r.Country,
		checkout.InputFirstName: r.FirstName,
		checkout.InputLastName:  r.LastName,
		checkout.InputEmail:     r.Email,
	}
	if r.CSRFToken != "" {
		values[checkout.InputCSRFToken] = r.CSRFToken
	}
	return values
}

// SubmitResponse reports the outcome of a submission back to the page.
type SubmitResponse struct {
	AttemptID       string          `json:"attempt_id,omitempty"`
	Status          checkout.Status `json:"status"`
	CardErrors      string          `json:"card_errors"`
	BackendStatus   int             `json:"backend_status,omitempty"`
	BackendResponse any             `json:"backend_response,omitempty"`
}

// AttemptsResponse lists a session's recorded attempts.
type AttemptsResponse struct {
	Attempts []attempts.Attempt `json:"attempts"`
}
