// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

// Callback is called with each event delivered to a subscriber. A returned
// error is logged by the hub and never reaches the publisher.
type Callback func(Event) error

// EventMatcher defines the Match method that is used to determine
// if the subscriber should be notified about a particular event.
type EventMatcher interface {
	Match(Event) bool
}

// Publisher is the producer side of the hub.
type Publisher interface {
	// Publish notifies every interested subscriber and returns a channel
	// that is closed once they have all been called.
	Publish(event Event) <-chan struct{}
}

// Subscriber is the consumer side of the hub.
type Subscriber interface {
	Subscribe(id string, callback Callback) *Subscription
	Unsubscribe(id string)
}

// Logger represents the logging methods called.
type Logger interface {
	Errorf(message string, args ...interface{})
	Warningf(message string, args ...interface{})
	Infof(message string, args ...interface{})
	Debugf(message string, args ...interface{})
	Tracef(message string, args ...interface{})
}
