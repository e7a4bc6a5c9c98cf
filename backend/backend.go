// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

// Package backend defines the request layer the screens read from and
// mutations are made through, along with an in-memory implementation.
package backend

import (
	"context"
	"time"
)

// Backend is the authenticated request layer of the app.
type Backend interface {
	// Medicines returns the current user's medicine routines.
	Medicines(ctx context.Context) ([]Medicine, error)

	// Mates returns the users the current user follows.
	Mates(ctx context.Context) ([]Mate, error)

	// Profile returns the current user's profile.
	Profile(ctx context.Context) (Profile, error)

	// DoseRecords returns the doses taken on days in [from, to).
	DoseRecords(ctx context.Context, from, to time.Time) ([]DoseRecord, error)

	AddMedicine(ctx context.Context, medicine Medicine) (Medicine, error)
	UpdateMedicine(ctx context.Context, medicine Medicine) error
	DeleteMedicine(ctx context.Context, id string) error

	Follow(ctx context.Context, mate Mate) error
	Unfollow(ctx context.Context, mateID string) error

	UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error)

	// TakeDose marks a dose of the medicine as taken at the given time.
	TakeDose(ctx context.Context, medicineID string, at time.Time) (DoseRecord, error)
}
