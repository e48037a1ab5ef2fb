package stripe

import (
	"fmt"
	"strings"
	"sync"

	"github.com/congo-pay/checkout/internal/checkout"
	"github.com/congo-pay/checkout/internal/widget"
)

// State is what the hosted card field last reported.
type State struct {
	Token    string
	Complete bool
	Error    *checkout.ProviderError
}

// Card is a card element created by a Client.
type Card struct {
	client *Client
	opts   checkout.ElementOptions
	events *widget.Emitter

	mu       sync.RWMutex
	selector string
	state    State
}

func newCard(c *Client, opts checkout.ElementOptions) *Card {
	return &Card{client: c, opts: opts, events: widget.NewEmitter()}
}

// Mount attaches the card to the container matching selector, which must be
// an id selector.
func (c *Card) Mount(selector string) error {
	if !strings.HasPrefix(selector, "#") || len(selector) < 2 {
		return fmt.Errorf("stripe: invalid mount selector %q", selector)
	}
	c.mu.Lock()
	if c.selector != "" {
		c.mu.Unlock()
		return ErrAlreadyMounted
	}
	c.selector = selector
	c.mu.Unlock()

	c.events.Emit(widget.EventReady, checkout.ValidationEvent{})
	return nil
}

func (c *Card) On(event string, handler func(checkout.ValidationEvent)) error {
	return c.events.On(event, handler)
}

// Selector returns the container the card is mounted in.
func (c *Card) Selector() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selector
}

// Options returns the element options the card was created with.
func (c *Card) Options() checkout.ElementOptions {
	return c.opts
}

// Update records the field's latest state and emits a change event.
func (c *Card) Update(st State) error {
	c.mu.Lock()
	if c.selector == "" {
		c.mu.Unlock()
		return ErrNotMounted
	}
	c.state = st
	c.mu.Unlock()

	c.events.Emit(widget.EventChange, checkout.ValidationEvent{Error: st.Error})
	return nil
}

func (c *Card) snapshot() (State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.selector != ""
}
