// Package widget provides the event plumbing shared by card element
// implementations.
package widget

import (
	"errors"
	"fmt"

	EventBus "github.com/asaskevich/EventBus"

	"github.com/congo-pay/checkout/internal/checkout"
)

// Events a card element may emit.
const (
	EventChange = checkout.EventChange
	EventReady  = "ready"
	EventFocus  = "focus"
	EventBlur   = "blur"
)

// ErrUnknownEvent is returned when subscribing to an event a card never emits.
var ErrUnknownEvent = errors.New("unknown widget event")

const topicPrefix = "widget:"

// Emitter fans card events out to subscribers. Handlers run synchronously on
// the emitting goroutine, in subscription order.
type Emitter struct {
	bus EventBus.Bus
}

// NewEmitter returns an emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{bus: EventBus.New()}
}

// On subscribes handler to event.
func (e *Emitter) On(event string, handler func(checkout.ValidationEvent)) error {
	if !known(event) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if handler == nil {
		return errors.New("handler is required")
	}
	return e.bus.Subscribe(topicPrefix+event, handler)
}

// Emit delivers ev to every handler subscribed to event.
func (e *Emitter) Emit(event string, ev checkout.ValidationEvent) {
	e.bus.Publish(topicPrefix+event, ev)
}

// Has reports whether anything listens to event.
func (e *Emitter) Has(event string) bool {
	return e.bus.HasCallback(topicPrefix + event)
}

func known(event string) bool {
	switch event {
	case EventChange, EventReady, EventFocus, EventBlur:
		return true
	}
	return false
}
