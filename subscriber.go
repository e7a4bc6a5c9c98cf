// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/deque"
	"github.com/juju/errors"
)

// subscriber owns the queue of events waiting for one callback. Events are
// executed one at a time, in the order they were enqueued, by the loop
// goroutine.
type subscriber struct {
	id  string
	gen uint64

	logger  Logger
	metrics Metrics
	clock   clock.Clock

	matcher  EventMatcher
	callback Callback

	mutex   sync.Mutex
	pending *deque.Deque
	closed  chan struct{}
	data    chan struct{}
	done    chan struct{}
}

func newSubscriber(id string, gen uint64,
	matcher EventMatcher, callback Callback,
	logger Logger, metrics Metrics, clock clock.Clock) *subscriber {
	// closed is always ready, so loop can keep draining without waiting
	// for another data signal.
	closed := make(chan struct{})
	close(closed)
	sub := &subscriber{
		id:       id,
		gen:      gen,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		matcher:  matcher,
		callback: callback,
		pending:  deque.New(),
		data:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		closed:   closed,
	}
	go sub.loop()
	sub.logger.Tracef("created subscriber %q (%d) for %v", id, gen, matcher)
	return sub
}

// close drops every event that has not started yet. An event whose callback
// is running when close is called still completes.
func (s *subscriber) close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for call, ok := s.pending.PopFront(); ok; call, ok = s.pending.PopFront() {
		call.(*message).callback.done()
		s.metrics.Dequeued(s.id)
	}
	close(s.done)
}

func (s *subscriber) loop() {
	var next <-chan struct{}
	for {
		select {
		case <-s.done:
			return
		case <-s.data:
		case <-next:
			// Still draining: next is s.closed until the queue is empty.
		}
		message, empty := s.popOne()
		if empty {
			next = nil
		} else {
			next = s.closed
		}
		// The queue is empty when close raced with the select above.
		if message == nil {
			continue
		}
		s.exec(message)
	}
}

func (s *subscriber) exec(message *message) {
	call := message.callback
	s.logger.Tracef("exec callback %q (%d) for %s", s.id, s.gen, call.event)
	if err := invoke(s.callback, call.event); err != nil {
		s.logger.Errorf("subscriber %q failed handling %s: %v", s.id, call.event, err)
		s.metrics.Failed(s.id)
	}
	call.done()

	// Consumed exposes how long a given event has been on the subscriber
	// pending list, including the time taken by the callback.
	s.metrics.Consumed(s.id, s.clock.Now().Sub(message.now))
}

func (s *subscriber) popOne() (*message, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	val, ok := s.pending.PopFront()
	if !ok {
		return nil, true
	}
	s.metrics.Dequeued(s.id)

	empty := s.pending.Len() == 0
	return val.(*message), empty
}

func (s *subscriber) notify(call *handlerCallback) {
	s.logger.Tracef("notify %q of %s", s.id, call.event)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.pending.PushBack(&message{
		now:      s.clock.Now(),
		callback: call,
	})
	if s.pending.Len() == 1 {
		select {
		case s.data <- struct{}{}:
		default:
		}
	}
	s.metrics.Enqueued(s.id)
}

type message struct {
	callback *handlerCallback
	now      time.Time
}

type handlerCallback struct {
	event Event
	wg    *sync.WaitGroup
	mu    sync.Mutex
}

func (h *handlerCallback) done() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.wg != nil {
		h.wg.Done()
		h.wg = nil
	}
}

// invoke calls the callback, turning a panic into an error so that one
// broken subscriber cannot take the delivery goroutine down with it.
func invoke(callback Callback, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return callback(event)
}
