// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import "time"

// Metrics represents methods for collecting information about the internal
// state of the hub.
type Metrics interface {
	// Published metric is used to increment how many events are published
	// per event kind.
	Published(event string)

	// Enqueued metrics increments the number of events a subscriber has
	// currently. This can be used to see if a subscriber has a backlog of
	// events piling up.
	Enqueued(subscriber string)

	// Dequeued metrics decrements the event count once the subscriber has
	// taken it off the pending queue, either to run it or because the
	// subscriber was removed.
	Dequeued(subscriber string)

	// Consumed metric records how long an event waited on the subscriber
	// queue before its callback returned.
	Consumed(subscriber string, duration time.Duration)

	// Failed metric increments when a subscriber callback returns an error
	// or panics.
	Failed(subscriber string)
}

type noOpMetrics struct{}

func (noOpMetrics) Published(event string)                             {}
func (noOpMetrics) Enqueued(subscriber string)                         {}
func (noOpMetrics) Dequeued(subscriber string)                         {}
func (noOpMetrics) Consumed(subscriber string, duration time.Duration) {}
func (noOpMetrics) Failed(subscriber string)                           {}
