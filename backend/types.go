// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package backend

import (
	"time"

	"github.com/juju/errors"
)

// TimeLayout is the layout of the times of day a medicine is taken at.
const TimeLayout = "15:04"

// Medicine is a medicine routine: what is taken, how much, and when.
type Medicine struct {
	ID     string
	Name   string
	Dosage string

	// Times are the times of day, in TimeLayout, a dose is due.
	Times []string

	// Days are the days of the week the medicine is taken on. No days
	// means every day.
	Days []time.Weekday
}

// Validate checks the medicine can be stored.
func (m Medicine) Validate() error {
	if m.Name == "" {
		return errors.NotValidf("medicine without name")
	}
	if len(m.Times) == 0 {
		return errors.NotValidf("medicine %q without times", m.Name)
	}
	for _, t := range m.Times {
		if _, err := time.Parse(TimeLayout, t); err != nil {
			return errors.NotValidf("medicine %q time %q", m.Name, t)
		}
	}
	for _, day := range m.Days {
		if day < time.Sunday || day > time.Saturday {
			return errors.NotValidf("medicine %q day %d", m.Name, int(day))
		}
	}
	return nil
}

// ScheduledOn reports whether the medicine is taken on the given day.
func (m Medicine) ScheduledOn(day time.Weekday) bool {
	if len(m.Days) == 0 {
		return true
	}
	for _, d := range m.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Mate is another user the current user follows.
type Mate struct {
	ID       string
	Nickname string
}

// Profile is the current user's profile with a few derived counts.
type Profile struct {
	ID            string
	Nickname      string
	PhotoURL      string
	MedicineCount int
	MateCount     int
}

// ProfileUpdate holds the editable fields of a profile.
type ProfileUpdate struct {
	Nickname string
	PhotoURL string
}

// DoseRecord records that a dose of a medicine was taken.
type DoseRecord struct {
	MedicineID string

	// Date is midnight of the day the dose belongs to.
	Date    time.Time
	TakenAt time.Time
}

// Day returns midnight of the day t falls on, in t's location.
func Day(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
