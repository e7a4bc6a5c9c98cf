// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

// Package screen holds the state machines behind the app's screens. A
// screen subscribes to the hub while it is active and reloads the parts of
// its data that an event makes stale, coalescing bursts of events.
package screen

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"golang.org/x/sync/errgroup"

	"github.com/medimate/datahub"
	"github.com/medimate/datahub/backend"
)

var logger = loggo.GetLogger("datahub.screen")

// Config holds the settings of a single screen.
type Config struct {
	// ScreenConfig holds the debounce period and the ignored events. A
	// zero Debounce reloads straight away.
	datahub.ScreenConfig

	// Clock is used for the debounce timer and the calendar month. It
	// defaults to the wall clock.
	Clock clock.Clock

	// Notify is called with the new snapshot after every load, successful
	// or not, unless a newer load or a deactivation superseded it.
	Notify func(Snapshot)
}

// ConfigFor returns the screen configuration for the kind from the
// application configuration.
func ConfigFor(kind Kind, config datahub.Config) Config {
	return Config{ScreenConfig: config.ScreenFor(kind.ID())}
}

// Snapshot is what a screen currently shows.
type Snapshot struct {
	Medicines []backend.Medicine
	Mates     []backend.Mate
	Profile   backend.Profile

	// Doses are the doses taken in the calendar month.
	Doses []backend.DoseRecord

	// Loaded holds the parts that have been loaded at least once.
	Loaded    Reload
	UpdatedAt time.Time

	// Err is the error from the last load, if it failed. The data of a
	// failed load is discarded.
	Err error
}

// Screen is the state machine of one screen.
type Screen struct {
	kind    Kind
	hub     datahub.Subscriber
	backend backend.Backend
	config  Config

	mu           sync.Mutex
	subscription *datahub.Subscription
	debouncer    *datahub.Debouncer
	ctx          context.Context
	cancel       context.CancelFunc
	pending      Reload
	snapshot     Snapshot

	// epoch changes on every activation and deactivation. Loads made for
	// an activation are dropped once it has ended.
	epoch uint64

	// seq numbers loads in the order they start. completed holds, per
	// part, the newest load that finished with that part, so a slow load
	// never overwrites what a later one fetched.
	seq       uint64
	completed map[Reload]uint64
}

var parts = []Reload{ReloadMedicines, ReloadMates, ReloadProfile, ReloadCalendar}

// New returns an inactive screen of the given kind.
func New(hub datahub.Subscriber, backend backend.Backend, kind Kind, config Config) (*Screen, error) {
	if err := kind.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if hub == nil || backend == nil {
		return nil, errors.NotValidf("%s screen without hub or backend", kind)
	}
	if config.Clock == nil {
		config.Clock = clock.WallClock
	}
	return &Screen{
		kind:      kind,
		hub:       hub,
		backend:   backend,
		config:    config,
		completed: make(map[Reload]uint64),
	}, nil
}

// ID returns the hub subscription id of the screen.
func (s *Screen) ID() string {
	return s.kind.ID()
}

// Kind returns the kind of the screen.
func (s *Screen) Kind() Kind {
	return s.kind
}

// Active reports whether the screen is subscribed to the hub.
func (s *Screen) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscription != nil
}

// Activate subscribes the screen to the hub and loads everything it shows.
// The subscription is made first so no event published during the load is
// missed. If the load fails the screen is deactivated again.
func (s *Screen) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.subscription != nil {
		s.mu.Unlock()
		return errors.Errorf("%s screen already active", s.kind)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.debouncer = datahub.NewDebouncer(s.config.Clock, s.config.Debounce, s.flush)
	s.subscription = s.hub.Subscribe(s.kind.ID(), s.handle)
	s.epoch++
	loadCtx, epoch := s.ctx, s.epoch
	s.mu.Unlock()

	logger.Debugf("activated %s screen", s.kind)
	if err := s.load(loadCtx, epoch, s.kind.Shows()); err != nil {
		s.Deactivate()
		return errors.Annotatef(err, "activating %s screen", s.kind)
	}
	return nil
}

// Deactivate unsubscribes the screen, drops any pending reload and cancels
// loads in progress. Deactivating an inactive screen does nothing.
func (s *Screen) Deactivate() {
	s.mu.Lock()
	subscription, debouncer, cancel := s.subscription, s.debouncer, s.cancel
	s.subscription, s.debouncer, s.cancel, s.ctx = nil, nil, nil, nil
	s.pending = 0
	if subscription != nil {
		s.epoch++
	}
	s.mu.Unlock()

	if subscription == nil {
		return
	}
	subscription.Unsubscribe()
	debouncer.Stop()
	cancel()
	logger.Debugf("deactivated %s screen", s.kind)
}

// Run activates the screen, waits for the context to be done, then
// deactivates it.
func (s *Screen) Run(ctx context.Context) error {
	if err := s.Activate(ctx); err != nil {
		return errors.Trace(err)
	}
	defer s.Deactivate()
	<-ctx.Done()
	return nil
}

// Refresh reloads everything the screen shows now, replacing any pending
// reload.
func (s *Screen) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.pending = 0
	s.mu.Unlock()
	return errors.Trace(s.load(ctx, 0, s.kind.Shows()))
}

// Snapshot returns what the screen currently shows.
func (s *Screen) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// handle is the hub callback. It only records what to reload; the load
// itself happens once the debounce period passes.
func (s *Screen) handle(event datahub.Event) error {
	if s.config.Ignores(event) {
		logger.Tracef("%s screen ignoring %s", s.kind, event)
		return nil
	}
	reload, err := s.kind.Reaction(event)
	if err != nil {
		return errors.Trace(err)
	}
	if reload == 0 {
		return nil
	}

	s.mu.Lock()
	debouncer := s.debouncer
	if debouncer == nil {
		// Deactivated since the event was queued.
		s.mu.Unlock()
		return nil
	}
	s.pending |= reload
	s.mu.Unlock()

	logger.Tracef("%s screen will reload %s after %s", s.kind, reload, event)
	debouncer.Trigger()
	return nil
}

// flush is the debounced action.
func (s *Screen) flush() {
	s.mu.Lock()
	reload, ctx, epoch := s.pending, s.ctx, s.epoch
	s.pending = 0
	s.mu.Unlock()

	if reload == 0 || ctx == nil {
		return
	}
	if err := s.load(ctx, epoch, reload); err != nil {
		logger.Warningf("%s screen reloading %s: %v", s.kind, reload, err)
	}
}

// load fetches the requested parts concurrently and replaces them in the
// snapshot if all of them succeed. A part that a later load has already
// fetched is left alone. A non zero epoch ties the load to an activation:
// if the screen is deactivated before the load finishes, its result is
// dropped without notifying.
func (s *Screen) load(ctx context.Context, epoch uint64, reload Reload) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	var (
		medicines []backend.Medicine
		mates     []backend.Mate
		profile   backend.Profile
		doses     []backend.DoseRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	if reload.Has(ReloadMedicines) {
		g.Go(func() (err error) {
			medicines, err = s.backend.Medicines(gctx)
			return errors.Annotate(err, "loading medicines")
		})
	}
	if reload.Has(ReloadMates) {
		g.Go(func() (err error) {
			mates, err = s.backend.Mates(gctx)
			return errors.Annotate(err, "loading mates")
		})
	}
	if reload.Has(ReloadProfile) {
		g.Go(func() (err error) {
			profile, err = s.backend.Profile(gctx)
			return errors.Annotate(err, "loading profile")
		})
	}
	if reload.Has(ReloadCalendar) {
		from, to := monthOf(s.config.Clock.Now())
		g.Go(func() (err error) {
			doses, err = s.backend.DoseRecords(gctx, from, to)
			return errors.Annotate(err, "loading calendar")
		})
	}
	err := g.Wait()

	s.mu.Lock()
	if epoch != 0 && epoch != s.epoch {
		s.mu.Unlock()
		logger.Debugf("dropping %s load of deactivated %s screen", reload, s.kind)
		return errors.Trace(err)
	}
	var fresh Reload
	for _, part := range parts {
		if reload.Has(part) && s.completed[part] < seq {
			s.completed[part] = seq
			fresh |= part
		}
	}
	if fresh == 0 {
		s.mu.Unlock()
		logger.Tracef("dropping %s load of %s screen, superseded", reload, s.kind)
		return errors.Trace(err)
	}
	if err == nil {
		if fresh.Has(ReloadMedicines) {
			s.snapshot.Medicines = medicines
		}
		if fresh.Has(ReloadMates) {
			s.snapshot.Mates = mates
		}
		if fresh.Has(ReloadProfile) {
			s.snapshot.Profile = profile
		}
		if fresh.Has(ReloadCalendar) {
			s.snapshot.Doses = doses
		}
		s.snapshot.Loaded |= fresh
		s.snapshot.UpdatedAt = s.config.Clock.Now()
	}
	s.snapshot.Err = err
	snapshot := s.snapshot
	s.mu.Unlock()

	if s.config.Notify != nil {
		s.config.Notify(snapshot)
	}
	return err
}

// monthOf returns the first day of t's month and of the month after.
func monthOf(t time.Time) (time.Time, time.Time) {
	year, month, _ := t.Date()
	from := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, 0)
}
