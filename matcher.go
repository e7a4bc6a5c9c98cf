// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import "strings"

// Match implements EventMatcher. An event matches itself and AllDataChanged,
// as the latter means every kind of data may have changed.
func (e Event) Match(event Event) bool {
	return e == event || event == AllDataChanged
}

type anyMatcher []Event

// MatchAny returns a matcher that matches any of the given events, and
// AllDataChanged.
//
//	hub.SubscribeMatch("stats", datahub.MatchAny(datahub.MateAdded, datahub.MateRemoved), handler)
func MatchAny(events ...Event) EventMatcher {
	return anyMatcher(append([]Event(nil), events...))
}

// Match implements EventMatcher.
func (m anyMatcher) Match(event Event) bool {
	for _, e := range m {
		if e.Match(event) {
			return true
		}
	}
	return false
}

func (m anyMatcher) String() string {
	names := make([]string, len(m))
	for i, e := range m {
		names[i] = e.String()
	}
	return "any(" + strings.Join(names, ",") + ")"
}

type allMatcher struct{}

// Match implements EventMatcher. All events match for the allMatcher.
func (*allMatcher) Match(Event) bool {
	return true
}

func (*allMatcher) String() string {
	return "all"
}

// MatchAll is an event matcher that matches all events.
var MatchAll EventMatcher = (*allMatcher)(nil)
