package checkout

import (
	"context"
	"fmt"
	"sync"
)

// Document is the read/write view of the checkout page the controller needs.
// Text reports whether an element exists even when its text is empty.
type Document interface {
	Text(id string) (string, bool)
	SetText(id, text string) bool
	Value(name string) (string, bool)
	Form(id string) (Form, bool)
}

// Form accepts submit handlers.
type Form interface {
	OnSubmit(handler SubmitHandler)
}

// SubmitHandler reacts to a form submission.
type SubmitHandler func(ctx context.Context, ev *SubmitEvent) Outcome

// SubmitEvent is handed to submit handlers. Handlers cancel the browser's
// native navigation with PreventDefault.
type SubmitEvent struct {
	mu        sync.Mutex
	prevented bool
}

// NewSubmitEvent returns an event whose default action is still pending.
func NewSubmitEvent() *SubmitEvent {
	return &SubmitEvent{}
}

// PreventDefault cancels the native form submission.
func (e *SubmitEvent) PreventDefault() {
	e.mu.Lock()
	e.prevented = true
	e.mu.Unlock()
}

// DefaultPrevented reports whether a handler cancelled the native submission.
func (e *SubmitEvent) DefaultPrevented() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prevented
}

// Page is an in-memory Document. It is safe for concurrent use.
type Page struct {
	mu     sync.RWMutex
	texts  map[string]string
	inputs map[string]string
	forms  map[string]*PageForm
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{
		texts:  make(map[string]string),
		inputs: make(map[string]string),
		forms:  make(map[string]*PageForm),
	}
}

// WithText adds an element holding text.
func (p *Page) WithText(id, text string) *Page {
	p.mu.Lock()
	p.texts[id] = text
	p.mu.Unlock()
	return p
}

// WithInput adds a named input holding value.
func (p *Page) WithInput(name, value string) *Page {
	p.mu.Lock()
	p.inputs[name] = value
	p.mu.Unlock()
	return p
}

// WithForm adds a form with the given id.
func (p *Page) WithForm(id string) *Page {
	p.mu.Lock()
	p.forms[id] = &PageForm{}
	p.mu.Unlock()
	return p
}

func (p *Page) Text(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	text, ok := p.texts[id]
	return text, ok
}

// SetText replaces an existing element's text. It reports false when the
// element does not exist.
func (p *Page) SetText(id, text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.texts[id]; !ok {
		return false
	}
	p.texts[id] = text
	return true
}

func (p *Page) Value(name string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	value, ok := p.inputs[name]
	return value, ok
}

// SetValue types value into an existing input.
func (p *Page) SetValue(name, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inputs[name]; !ok {
		return false
	}
	p.inputs[name] = value
	return true
}

func (p *Page) Form(id string) (Form, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	form, ok := p.forms[id]
	if !ok {
		return nil, false
	}
	return form, true
}

// Submit dispatches a submit event on the form with the given id and returns
// the event together with the last handler's outcome.
func (p *Page) Submit(ctx context.Context, id string) (*SubmitEvent, Outcome, error) {
	p.mu.RLock()
	form, ok := p.forms[id]
	p.mu.RUnlock()
	if !ok {
		return nil, Outcome{}, fmt.Errorf("form %q: %w", id, ErrMissingElement)
	}
	ev, outcome := form.Dispatch(ctx)
	return ev, outcome, nil
}

// PageForm is the form element of a Page.
type PageForm struct {
	mu       sync.RWMutex
	handlers []SubmitHandler
}

func (f *PageForm) OnSubmit(handler SubmitHandler) {
	f.mu.Lock()
	f.handlers = append(f.handlers, handler)
	f.mu.Unlock()
}

// Dispatch runs every registered handler with a fresh event.
func (f *PageForm) Dispatch(ctx context.Context) (*SubmitEvent, Outcome) {
	f.mu.RLock()
	handlers := append([]SubmitHandler(nil), f.handlers...)
	f.mu.RUnlock()

	ev := NewSubmitEvent()
	var outcome Outcome
	for _, h := range handlers {
		outcome = h(ctx, ev)
	}
	return ev, outcome
}
