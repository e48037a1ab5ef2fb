package checkout

import (
	"context"
	"errors"
	"testing"
)

func TestPageSetTextOnlyTouchesExistingElements(t *testing.T) {
	page := NewPage().WithText("card-errors", "old")

	if !page.SetText("card-errors", "new") {
		t.Fatal("expected existing element to be updated")
	}
	if got, _ := page.Text("card-errors"); got != "new" {
		t.Fatalf("expected new text, got %q", got)
	}
	if page.SetText("nope", "x") {
		t.Fatal("expected missing element to be rejected")
	}
	if _, ok := page.Text("nope"); ok {
		t.Fatal("SetText must not create elements")
	}
	if page.SetValue("email", "a@b.com") {
		t.Fatal("expected missing input to be rejected")
	}
}

func TestPageSubmitRunsHandlersWithFreshEvents(t *testing.T) {
	page := NewPage().WithForm("checkout")
	form, ok := page.Form("checkout")
	if !ok {
		t.Fatal("form not found")
	}

	var seen []*SubmitEvent
	form.OnSubmit(func(_ context.Context, ev *SubmitEvent) Outcome {
		seen = append(seen, ev)
		ev.PreventDefault()
		return Outcome{Status: StatusSubmitted}
	})

	first, outcome, err := page.Submit(context.Background(), "checkout")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Status != StatusSubmitted || !first.DefaultPrevented() {
		t.Fatalf("unexpected result %+v prevented=%v", outcome, first.DefaultPrevented())
	}
	second, _, _ := page.Submit(context.Background(), "checkout")
	if first == second || len(seen) != 2 {
		t.Fatal("expected a new event per submission")
	}

	if _, _, err := page.Submit(context.Background(), "other"); !errors.Is(err, ErrMissingElement) {
		t.Fatalf("expected ErrMissingElement, got %v", err)
	}
}

func TestSubmitEventDefaultsToNotPrevented(t *testing.T) {
	if NewSubmitEvent().DefaultPrevented() {
		t.Fatal("new events must not start prevented")
	}
}
