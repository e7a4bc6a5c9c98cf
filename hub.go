// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

// HubConfig is the argument struct for NewHub.
type HubConfig struct {
	// Logger allows specifying a logging implementation for debug
	// and trace level messages emitted from the hub.
	Logger Logger

	// Metrics allows the passing in of a metrics collector.
	Metrics Metrics

	// Clock defines a clock to help improve test coverage.
	Clock clock.Clock
}

// Hub delivers data change events to subscribers in the same process.
//
// Each subscriber is registered under a string id, and there is at most one
// subscriber per id. Every subscriber has its own queue: events are delivered
// to a subscriber in the order they were published, and different
// subscribers are notified in parallel.
//
// A Hub is created once at application start and passed to everything that
// publishes or subscribes.
type Hub struct {
	mutex       sync.Mutex
	subscribers map[string]*subscriber
	gen         uint64

	logger  Logger
	metrics Metrics
	clock   clock.Clock
}

// NewHub returns a new Hub instance.
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = new(HubConfig)
	}
	logger := config.Logger
	if logger == nil {
		logger = loggo.GetLogger("datahub")
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = noOpMetrics{}
	}
	clock := config.Clock
	if clock == nil {
		clock = wallClock
	}
	return &Hub{
		subscribers: make(map[string]*subscriber),
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
	}
}

var wallClock clock.Clock = clock.WallClock

// prePublishTestHook is patched by tests to run code before Publish takes
// the hub mutex.
var prePublishTestHook func()

var (
	_ Publisher  = (*Hub)(nil)
	_ Subscriber = (*Hub)(nil)
)

// Publish will notify all the subscribers that are interested by calling
// their callback. The return value is a channel that is closed once every
// subscriber registered at the time of the call has finished with the
// event, or was removed before getting to it.
//
// Invalid events are logged and dropped, and the returned channel is
// already closed.
func (h *Hub) Publish(event Event) <-chan struct{} {
	done := make(chan struct{})
	if err := event.Validate(); err != nil {
		h.logger.Errorf("not publishing: %v", err)
		close(done)
		return done
	}

	if prePublishTestHook != nil {
		prePublishTestHook()
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.metrics.Published(event.String())

	wait := sync.WaitGroup{}
	for _, s := range h.subscribers {
		if s.matcher.Match(event) {
			wait.Add(1)
			s.notify(
				&handlerCallback{
					event: event,
					wg:    &wait,
				})
		}
	}

	go func() {
		wait.Wait()
		close(done)
	}()

	return done
}

// PublishWait publishes the event and waits until every subscriber has
// been notified, or the context is done. Subscriber failures are not
// reported.
func (h *Hub) PublishWait(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return errors.Trace(err)
	}
	select {
	case <-h.Publish(event):
		return nil
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	}
}

// Subscribe registers the callback under the id for every event. Any
// existing registration for the id is replaced, and its pending events are
// dropped. An empty id is replaced by a generated one.
func (h *Hub) Subscribe(id string, callback Callback) *Subscription {
	return h.SubscribeMatch(id, MatchAll, callback)
}

// SubscribeMatch registers the callback under the id for the events that
// the matcher matches. See Subscribe.
func (h *Hub) SubscribeMatch(id string, matcher EventMatcher, callback Callback) *Subscription {
	if matcher == nil || callback == nil {
		h.logger.Warningf("ignoring subscription %q with missing matcher or callback", id)
		return &Subscription{id: id}
	}
	if id == "" {
		id = uuid.NewString()
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if existing, ok := h.subscribers[id]; ok {
		h.logger.Debugf("replacing subscription %q (%d)", id, existing.gen)
		existing.close()
	}
	h.gen++
	h.subscribers[id] = newSubscriber(id, h.gen, matcher, callback, h.logger, h.metrics, h.clock)
	return &Subscription{hub: h, id: id, gen: h.gen}
}

// Unsubscribe removes the registration for the id. It is not an error to
// unsubscribe an id that is not registered.
func (h *Hub) Unsubscribe(id string) {
	h.unsubscribe(id, 0)
}

// unsubscribe removes the subscriber for the id. A non zero gen only
// removes the subscriber if it is that generation.
func (h *Hub) unsubscribe(id string, gen uint64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	sub, ok := h.subscribers[id]
	if !ok || (gen != 0 && sub.gen != gen) {
		return
	}
	sub.close()
	delete(h.subscribers, id)
	h.logger.Tracef("unsubscribed %q (%d)", id, sub.gen)
}

// Subscribers returns the sorted ids of the current subscribers.
func (h *Hub) Subscribers() []string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close removes every subscriber. The hub may still be used afterwards.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, sub := range h.subscribers {
		sub.close()
		delete(h.subscribers, id)
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	hub *Hub
	id  string
	gen uint64
}

// ID returns the id the subscription was registered under.
func (s *Subscription) ID() string {
	return s.id
}

// Active reports whether the subscription is still the registration for
// its id.
func (s *Subscription) Active() bool {
	if s == nil || s.hub == nil {
		return false
	}
	s.hub.mutex.Lock()
	defer s.hub.mutex.Unlock()
	sub, ok := s.hub.subscribers[s.id]
	return ok && sub.gen == s.gen
}

// Unsubscribe removes the registration made by this subscription. If the id
// has since been subscribed again, the newer registration is left alone.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.unsubscribe(s.id, s.gen)
}
