// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import (
	"github.com/juju/errors"
)

// Event is a notification that some category of backend visible state
// changed. Events carry no payload; subscribers refetch whatever they show.
//
// The set of events is closed. Code that reacts to events should switch over
// every value and treat anything else as an error, so that adding an event
// forces every consumer to decide how to react to it.
type Event int

const (
	// MedicineAdded is published when a medicine routine is created.
	MedicineAdded Event = iota + 1

	// MedicineUpdated is published when a medicine routine is modified,
	// including when a dose of it is marked as taken.
	MedicineUpdated

	// MedicineDeleted is published when a medicine routine is removed.
	MedicineDeleted

	// MateAdded is published when the user starts following a mate.
	MateAdded

	// MateRemoved is published when the user stops following a mate.
	MateRemoved

	// ProfileUpdated is published when the nickname or photo of the current
	// user changes.
	ProfileUpdated

	// AllDataChanged means everything should be considered stale. It is
	// published after bulk operations such as login or a full refresh.
	AllDataChanged

	endOfEvents
)

var eventNames = map[Event]string{
	MedicineAdded:   "medicineAdded",
	MedicineUpdated: "medicineUpdated",
	MedicineDeleted: "medicineDeleted",
	MateAdded:       "mateAdded",
	MateRemoved:     "mateRemoved",
	ProfileUpdated:  "profileUpdated",
	AllDataChanged:  "allDataChanged",
}

// AllEvents returns every event in declaration order.
func AllEvents() []Event {
	events := make([]Event, 0, len(eventNames))
	for e := MedicineAdded; e < endOfEvents; e++ {
		events = append(events, e)
	}
	return events
}

// ParseEvent returns the event with the given name.
func ParseEvent(name string) (Event, error) {
	for e := MedicineAdded; e < endOfEvents; e++ {
		if eventNames[e] == name {
			return e, nil
		}
	}
	return 0, errors.NotValidf("event %q", name)
}

// Validate returns a NotValid error if the event is not one of the known
// events.
func (e Event) Validate() error {
	if e < MedicineAdded || e >= endOfEvents {
		return errors.NotValidf("event %d", int(e))
	}
	return nil
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Event) UnmarshalText(text []byte) error {
	parsed, err := ParseEvent(string(text))
	if err != nil {
		return errors.Trace(err)
	}
	*e = parsed
	return nil
}
