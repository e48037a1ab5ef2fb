package widget

import (
	"errors"
	"testing"

	"github.com/congo-pay/checkout/internal/checkout"
)

func TestEmitterDeliversInOrder(t *testing.T) {
	e := NewEmitter()
	var got []string
	if err := e.On(EventChange, func(ev checkout.ValidationEvent) { got = append(got, "a:"+msg(ev)) }); err != nil {
		t.Fatalf("subscribe a: %v", err)
	}
	if err := e.On(EventChange, func(ev checkout.ValidationEvent) { got = append(got, "b:"+msg(ev)) }); err != nil {
		t.Fatalf("subscribe b: %v", err)
	}

	e.Emit(EventChange, checkout.ValidationEvent{Error: &checkout.ProviderError{Message: "bad"}})
	e.Emit(EventChange, checkout.ValidationEvent{})

	want := []string{"a:bad", "b:bad", "a:", "b:"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEmitterRejectsUnknownEvents(t *testing.T) {
	e := NewEmitter()
	err := e.On("keypress", func(checkout.ValidationEvent) {})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
	if e.Has("keypress") || e.Has(EventBlur) {
		t.Fatal("no subscribers expected")
	}
	if err := e.On(EventBlur, nil); err == nil {
		t.Fatal("expected nil handler to be rejected")
	}
}

func TestEmitWithoutSubscribersIsNoop(t *testing.T) {
	NewEmitter().Emit(EventReady, checkout.ValidationEvent{})
}

func msg(ev checkout.ValidationEvent) string {
	if ev.Error == nil {
		return ""
	}
	return ev.Error.Message
}
