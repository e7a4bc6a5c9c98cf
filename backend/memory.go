// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package backend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

// Memory is a Backend that keeps everything in memory. It is used for tests
// and when running without a server.
type Memory struct {
	mu        sync.Mutex
	profile   Profile
	medicines map[string]Medicine
	mates     map[string]Mate
	doses     []DoseRecord
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty Memory backend for a user with the given
// nickname.
func NewMemory(nickname string) *Memory {
	return &Memory{
		profile: Profile{
			ID:       uuid.NewString(),
			Nickname: nickname,
		},
		medicines: make(map[string]Medicine),
		mates:     make(map[string]Mate),
	}
}

// Medicines implements Backend. Medicines are sorted by name.
func (m *Memory) Medicines(ctx context.Context) ([]Medicine, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Medicine, 0, len(m.medicines))
	for _, medicine := range m.medicines {
		result = append(result, copyMedicine(medicine))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Mates implements Backend. Mates are sorted by nickname.
func (m *Memory) Mates(ctx context.Context) ([]Mate, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Mate, 0, len(m.mates))
	for _, mate := range m.mates {
		result = append(result, mate)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Nickname != result[j].Nickname {
			return result[i].Nickname < result[j].Nickname
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Profile implements Backend.
func (m *Memory) Profile(ctx context.Context) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	profile := m.profile
	profile.MedicineCount = len(m.medicines)
	profile.MateCount = len(m.mates)
	return profile, nil
}

// DoseRecords implements Backend. Records are sorted by the time taken.
func (m *Memory) DoseRecords(ctx context.Context, from, to time.Time) ([]DoseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	if to.Before(from) {
		return nil, errors.NotValidf("range %v to %v", from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []DoseRecord
	for _, dose := range m.doses {
		if !dose.Date.Before(from) && dose.Date.Before(to) {
			result = append(result, dose)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TakenAt.Before(result[j].TakenAt)
	})
	return result, nil
}

// AddMedicine implements Backend. The returned medicine has its ID set.
func (m *Memory) AddMedicine(ctx context.Context, medicine Medicine) (Medicine, error) {
	if err := ctx.Err(); err != nil {
		return Medicine{}, errors.Trace(err)
	}
	if err := medicine.Validate(); err != nil {
		return Medicine{}, errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	medicine = copyMedicine(medicine)
	medicine.ID = uuid.NewString()
	m.medicines[medicine.ID] = medicine
	return copyMedicine(medicine), nil
}

// UpdateMedicine implements Backend.
func (m *Memory) UpdateMedicine(ctx context.Context, medicine Medicine) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	if err := medicine.Validate(); err != nil {
		return errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.medicines[medicine.ID]; !ok {
		return errors.NotFoundf("medicine %q", medicine.ID)
	}
	m.medicines[medicine.ID] = copyMedicine(medicine)
	return nil
}

// DeleteMedicine implements Backend. The doses taken of the medicine are
// removed too.
func (m *Memory) DeleteMedicine(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.medicines[id]; !ok {
		return errors.NotFoundf("medicine %q", id)
	}
	delete(m.medicines, id)
	doses := m.doses[:0]
	for _, dose := range m.doses {
		if dose.MedicineID != id {
			doses = append(doses, dose)
		}
	}
	m.doses = doses
	return nil
}

// Follow implements Backend.
func (m *Memory) Follow(ctx context.Context, mate Mate) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	if mate.ID == "" {
		return errors.NotValidf("mate without id")
	}
	if mate.ID == m.profileID() {
		return errors.NotValidf("following yourself")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.mates[mate.ID]; ok {
		return errors.AlreadyExistsf("mate %q", mate.ID)
	}
	m.mates[mate.ID] = mate
	return nil
}

// Unfollow implements Backend.
func (m *Memory) Unfollow(ctx context.Context, mateID string) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.mates[mateID]; !ok {
		return errors.NotFoundf("mate %q", mateID)
	}
	delete(m.mates, mateID)
	return nil
}

// UpdateProfile implements Backend.
func (m *Memory) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, errors.Trace(err)
	}
	if update.Nickname == "" {
		return Profile{}, errors.NotValidf("empty nickname")
	}
	m.mu.Lock()
	m.profile.Nickname = update.Nickname
	m.profile.PhotoURL = update.PhotoURL
	m.mu.Unlock()
	return m.Profile(ctx)
}

// TakeDose implements Backend. Taking the same medicine twice on one day
// replaces the earlier record.
func (m *Memory) TakeDose(ctx context.Context, medicineID string, at time.Time) (DoseRecord, error) {
	if err := ctx.Err(); err != nil {
		return DoseRecord{}, errors.Trace(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	medicine, ok := m.medicines[medicineID]
	if !ok {
		return DoseRecord{}, errors.NotFoundf("medicine %q", medicineID)
	}
	if !medicine.ScheduledOn(at.Weekday()) {
		return DoseRecord{}, errors.NotValidf("medicine %q on %v", medicine.Name, at.Weekday())
	}
	record := DoseRecord{
		MedicineID: medicineID,
		Date:       Day(at),
		TakenAt:    at,
	}
	for i, dose := range m.doses {
		if dose.MedicineID == medicineID && dose.Date.Equal(record.Date) {
			m.doses[i] = record
			return record, nil
		}
	}
	m.doses = append(m.doses, record)
	return record, nil
}

func (m *Memory) profileID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.ID
}

func copyMedicine(medicine Medicine) Medicine {
	medicine.Times = append([]string(nil), medicine.Times...)
	medicine.Days = append([]time.Weekday(nil), medicine.Days...)
	return medicine
}
