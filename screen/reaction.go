// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package screen

import (
	"strings"

	"github.com/juju/errors"

	"github.com/medimate/datahub"
)

// Kind identifies one of the app's screens.
type Kind int

const (
	// Home shows today's medicines and the mate cards.
	Home Kind = iota + 1

	// FullCalendar shows the month of taken and scheduled doses.
	FullCalendar

	// MyPage shows the profile with its statistics and the followed mates.
	MyPage

	// MateSelection lists the mates to nag or encourage.
	MateSelection
)

// AllKinds returns every screen kind.
func AllKinds() []Kind {
	return []Kind{Home, FullCalendar, MyPage, MateSelection}
}

// ID returns the hub subscription id used by screens of this kind.
func (k Kind) ID() string {
	switch k {
	case Home:
		return "home"
	case FullCalendar:
		return "fullcalendar-subscription"
	case MyPage:
		return "mypage-subscription"
	case MateSelection:
		return "mateselection-subscription"
	}
	return ""
}

func (k Kind) String() string {
	switch k {
	case Home:
		return "home"
	case FullCalendar:
		return "full calendar"
	case MyPage:
		return "my page"
	case MateSelection:
		return "mate selection"
	}
	return "unknown"
}

// Validate returns a NotValid error for unknown kinds.
func (k Kind) Validate() error {
	if k.ID() == "" {
		return errors.NotValidf("screen kind %d", int(k))
	}
	return nil
}

// Shows returns everything the screen displays, which is what it loads on
// activation and on a forced refresh.
func (k Kind) Shows() Reload {
	switch k {
	case Home:
		return ReloadMedicines | ReloadMates
	case FullCalendar:
		return ReloadMedicines | ReloadCalendar
	case MyPage:
		return ReloadProfile | ReloadMates
	case MateSelection:
		return ReloadMates
	}
	return 0
}

// Reaction returns what a screen of this kind reloads when the event is
// published. No reload is a valid reaction; an event the screen has no
// reaction for is an error.
func (k Kind) Reaction(event datahub.Event) (Reload, error) {
	switch k {
	case Home:
		return homeReaction(event)
	case FullCalendar:
		return fullCalendarReaction(event)
	case MyPage:
		return myPageReaction(event)
	case MateSelection:
		return mateSelectionReaction(event)
	}
	return 0, errors.NotValidf("screen kind %d", int(k))
}

func homeReaction(event datahub.Event) (Reload, error) {
	switch event {
	case datahub.MedicineAdded, datahub.MedicineUpdated, datahub.MedicineDeleted:
		return ReloadMedicines, nil
	case datahub.MateAdded, datahub.MateRemoved:
		return ReloadMates, nil
	case datahub.ProfileUpdated:
		return 0, nil
	case datahub.AllDataChanged:
		return ReloadMedicines | ReloadMates, nil
	}
	return 0, errors.NotSupportedf("%s on home screen", event)
}

func fullCalendarReaction(event datahub.Event) (Reload, error) {
	switch event {
	case datahub.MedicineAdded, datahub.MedicineUpdated, datahub.MedicineDeleted:
		return ReloadMedicines | ReloadCalendar, nil
	case datahub.MateAdded, datahub.MateRemoved:
		return 0, nil
	case datahub.ProfileUpdated:
		return 0, nil
	case datahub.AllDataChanged:
		return ReloadMedicines | ReloadCalendar, nil
	}
	return 0, errors.NotSupportedf("%s on full calendar screen", event)
}

func myPageReaction(event datahub.Event) (Reload, error) {
	switch event {
	case datahub.MedicineAdded, datahub.MedicineUpdated, datahub.MedicineDeleted:
		// The medicine count and streaks are part of the profile.
		return ReloadProfile, nil
	case datahub.MateAdded, datahub.MateRemoved:
		return ReloadProfile | ReloadMates, nil
	case datahub.ProfileUpdated:
		return ReloadProfile, nil
	case datahub.AllDataChanged:
		return ReloadProfile | ReloadMates, nil
	}
	return 0, errors.NotSupportedf("%s on my page screen", event)
}

func mateSelectionReaction(event datahub.Event) (Reload, error) {
	switch event {
	case datahub.MedicineAdded, datahub.MedicineUpdated, datahub.MedicineDeleted:
		return 0, nil
	case datahub.MateAdded, datahub.MateRemoved:
		return ReloadMates, nil
	case datahub.ProfileUpdated:
		return 0, nil
	case datahub.AllDataChanged:
		return ReloadMates, nil
	}
	return 0, errors.NotSupportedf("%s on mate selection screen", event)
}

// Reload is a set of the parts of a screen to fetch again.
type Reload uint8

const (
	ReloadMedicines Reload = 1 << iota
	ReloadMates
	ReloadProfile
	ReloadCalendar
)

var reloadNames = []string{"medicines", "mates", "profile", "calendar"}

// Has reports whether every part of other is in r.
func (r Reload) Has(other Reload) bool {
	return r&other == other
}

func (r Reload) String() string {
	if r == 0 {
		return "nothing"
	}
	var parts []string
	for i, name := range reloadNames {
		if r.Has(1 << i) {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "+")
}
