// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import (
	"strings"
	"sync"

	"github.com/juju/errors"
)

// Multiplexer allows multiple handlers to share a single subscription, and
// so a single event queue, on the hub. This means that all the events for
// the various handlers are called back in the order that the events were
// published. If more than one handler matches any given event, the handlers
// are called back one after the other in the order that they were added.
type Multiplexer struct {
	id           string
	mu           sync.Mutex
	outputs      []element
	subscription *Subscription
}

type element struct {
	matcher EventMatcher
	handler Callback
}

// multiUnsubscribeTestHook is patched by tests to force the ordering of
// concurrent publish and unsubscribe calls.
var multiUnsubscribeTestHook func()

// NewMultiplexer creates a new multiplexer for the hub and subscribes it
// under the id. Unsubscribing the multiplexer stops calls for all handlers
// added.
func (h *Hub) NewMultiplexer(id string) *Multiplexer {
	mp := &Multiplexer{}
	mp.subscription = h.SubscribeMatch(id, matchFunc(mp.match), mp.callback)
	mp.id = mp.subscription.ID()
	return mp
}

// ID returns the id the multiplexer is subscribed under.
func (m *Multiplexer) ID() string {
	return m.id
}

// Add a handler for a specific event. As with SubscribeMatch, the handler is
// also called for AllDataChanged.
func (m *Multiplexer) Add(event Event, handler Callback) {
	m.AddMatch(event, handler)
}

// AddMatch adds another handler for any event that the matcher matches.
func (m *Multiplexer) AddMatch(matcher EventMatcher, handler Callback) {
	if handler == nil || matcher == nil {
		// It is safe but useless.
		return
	}
	m.mu.Lock()
	m.outputs = append(m.outputs, element{matcher: matcher, handler: handler})
	m.mu.Unlock()
}

// Unsubscribe the multiplexer from the hub.
func (m *Multiplexer) Unsubscribe() {
	m.mu.Lock()
	subscription := m.subscription
	m.subscription = nil
	m.mu.Unlock()

	if multiUnsubscribeTestHook != nil {
		multiUnsubscribeTestHook()
	}

	// The hub mutex must not be acquired while holding ours, as Publish
	// calls match with the hub mutex held.
	subscription.Unsubscribe()
}

func (m *Multiplexer) callback(event Event) error {
	// Since the handlers are arbitrary code, don't hold the mutex for the
	// duration of the calls.
	m.mu.Lock()
	outputs := make([]element, len(m.outputs))
	copy(outputs, m.outputs)
	m.mu.Unlock()

	var failures []string
	for _, element := range outputs {
		if !element.matcher.Match(event) {
			continue
		}
		if err := invoke(element.handler, event); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return errors.Errorf("%d handler(s) failed: %s", len(failures), strings.Join(failures, "; "))
	}
	return nil
}

// match reports whether any of the handlers match the event. Here we
// explicitly don't make a copy of the outputs as match is called for every
// published event.
func (m *Multiplexer) match(event Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, element := range m.outputs {
		if element.matcher.Match(event) {
			return true
		}
	}
	return false
}

type matchFunc func(Event) bool

// Match implements EventMatcher.
func (f matchFunc) Match(event Event) bool {
	return f(event)
}
