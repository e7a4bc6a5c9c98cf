// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package backend

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/medimate/datahub"
)

var logger = loggo.GetLogger("datahub.backend")

// EventPublisher publishes an event and waits for it to be delivered.
// *datahub.Hub implements it.
type EventPublisher interface {
	PublishWait(ctx context.Context, event datahub.Event) error
}

// Notifying wraps a Backend so that every successful mutation publishes the
// matching event. Reads go straight to the wrapped Backend.
//
// A mutation that succeeded is reported as a success even if the screens
// reacting to its event fail, or the wait for them is cut short.
type Notifying struct {
	Backend
	publisher EventPublisher
}

var _ Backend = (*Notifying)(nil)

// NewNotifying returns a Notifying backend.
func NewNotifying(backend Backend, publisher EventPublisher) *Notifying {
	return &Notifying{
		Backend:   backend,
		publisher: publisher,
	}
}

// AddMedicine implements Backend, publishing MedicineAdded.
func (n *Notifying) AddMedicine(ctx context.Context, medicine Medicine) (Medicine, error) {
	added, err := n.Backend.AddMedicine(ctx, medicine)
	if err != nil {
		return Medicine{}, errors.Trace(err)
	}
	n.notify(ctx, datahub.MedicineAdded)
	return added, nil
}

// UpdateMedicine implements Backend, publishing MedicineUpdated.
func (n *Notifying) UpdateMedicine(ctx context.Context, medicine Medicine) error {
	if err := n.Backend.UpdateMedicine(ctx, medicine); err != nil {
		return errors.Trace(err)
	}
	n.notify(ctx, datahub.MedicineUpdated)
	return nil
}

// DeleteMedicine implements Backend, publishing MedicineDeleted.
func (n *Notifying) DeleteMedicine(ctx context.Context, id string) error {
	if err := n.Backend.DeleteMedicine(ctx, id); err != nil {
		return errors.Trace(err)
	}
	n.notify(ctx, datahub.MedicineDeleted)
	return nil
}

// Follow implements Backend, publishing MateAdded.
func (n *Notifying) Follow(ctx context.Context, mate Mate) error {
	if err := n.Backend.Follow(ctx, mate); err != nil {
		return errors.Trace(err)
	}
	n.notify(ctx, datahub.MateAdded)
	return nil
}

// Unfollow implements Backend, publishing MateRemoved.
func (n *Notifying) Unfollow(ctx context.Context, mateID string) error {
	if err := n.Backend.Unfollow(ctx, mateID); err != nil {
		return errors.Trace(err)
	}
	n.notify(ctx, datahub.MateRemoved)
	return nil
}

// UpdateProfile implements Backend, publishing ProfileUpdated.
func (n *Notifying) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	profile, err := n.Backend.UpdateProfile(ctx, update)
	if err != nil {
		return Profile{}, errors.Trace(err)
	}
	n.notify(ctx, datahub.ProfileUpdated)
	return profile, nil
}

// TakeDose implements Backend, publishing MedicineUpdated as both the
// calendar and the profile statistics change.
func (n *Notifying) TakeDose(ctx context.Context, medicineID string, at time.Time) (DoseRecord, error) {
	record, err := n.Backend.TakeDose(ctx, medicineID, at)
	if err != nil {
		return DoseRecord{}, errors.Trace(err)
	}
	n.notify(ctx, datahub.MedicineUpdated)
	return record, nil
}

// RefreshAll tells every screen to assume all its data is stale, as after
// logging in or a pull to refresh.
func (n *Notifying) RefreshAll(ctx context.Context) {
	n.notify(ctx, datahub.AllDataChanged)
}

func (n *Notifying) notify(ctx context.Context, event datahub.Event) {
	if invalidator, ok := n.Backend.(Invalidator); ok {
		invalidator.Invalidate(event)
	}
	if err := n.publisher.PublishWait(ctx, event); err != nil {
		// The event is already queued for every subscriber; only the
		// wait was abandoned.
		logger.Debugf("not waiting for %s delivery: %v", event, err)
	}
}
