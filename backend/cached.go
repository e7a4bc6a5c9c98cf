// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medimate/datahub"
)

const (
	// DefaultCacheExpiration is how long a read is kept when no event
	// makes it stale first.
	DefaultCacheExpiration = 5 * time.Minute

	cacheCleanupInterval = 10 * time.Minute

	medicinesKey = "medicines"
	matesKey     = "mates"
	profileKey   = "profile"
	dosesPrefix  = "doses/"
)

// Invalidator is implemented by backends that hold on to reads. Notifying
// calls Invalidate before publishing the event, so that subscribers
// reacting to the event read fresh data.
type Invalidator interface {
	Invalidate(event datahub.Event)
}

// Cached wraps a Backend and keeps the results of reads until an event
// makes them stale or they expire. Mutations go straight to the wrapped
// Backend; wrap a Cached in a Notifying to have them invalidate the cache.
type Cached struct {
	Backend
	cache *gocache.Cache

	// gen is bumped by every invalidation. A read that started before an
	// invalidation is not stored.
	mu  sync.Mutex
	gen uint64
}

var (
	_ Backend     = (*Cached)(nil)
	_ Invalidator = (*Cached)(nil)
)

// NewCached returns a Cached backend. A non-positive expiration means
// DefaultCacheExpiration.
func NewCached(backend Backend, expiration time.Duration) *Cached {
	if expiration <= 0 {
		expiration = DefaultCacheExpiration
	}
	return &Cached{
		Backend: backend,
		cache:   gocache.New(expiration, cacheCleanupInterval),
	}
}

// Medicines implements Backend.
func (c *Cached) Medicines(ctx context.Context) ([]Medicine, error) {
	medicines, err := read(c, medicinesKey, func() ([]Medicine, error) {
		return c.Backend.Medicines(ctx)
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	result := make([]Medicine, len(medicines))
	for i, medicine := range medicines {
		result[i] = copyMedicine(medicine)
	}
	return result, nil
}

// Mates implements Backend.
func (c *Cached) Mates(ctx context.Context) ([]Mate, error) {
	mates, err := read(c, matesKey, func() ([]Mate, error) {
		return c.Backend.Mates(ctx)
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return append([]Mate(nil), mates...), nil
}

// Profile implements Backend.
func (c *Cached) Profile(ctx context.Context) (Profile, error) {
	profile, err := read(c, profileKey, func() (Profile, error) {
		return c.Backend.Profile(ctx)
	})
	return profile, errors.Trace(err)
}

// DoseRecords implements Backend. Each range is cached separately.
func (c *Cached) DoseRecords(ctx context.Context, from, to time.Time) ([]DoseRecord, error) {
	key := fmt.Sprintf("%s%s/%s", dosesPrefix, from.Format(time.RFC3339), to.Format(time.RFC3339))
	records, err := read(c, key, func() ([]DoseRecord, error) {
		return c.Backend.DoseRecords(ctx, from, to)
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return append([]DoseRecord(nil), records...), nil
}

// Invalidate drops the reads the event makes stale.
func (c *Cached) Invalidate(event datahub.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++

	switch event {
	case datahub.MedicineAdded, datahub.MedicineDeleted:
		// Deleting a medicine deletes its doses, and the profile counts
		// medicines.
		c.cache.Delete(medicinesKey)
		c.cache.Delete(profileKey)
		c.deleteDoses()
	case datahub.MedicineUpdated:
		c.cache.Delete(medicinesKey)
		c.deleteDoses()
	case datahub.MateAdded, datahub.MateRemoved:
		c.cache.Delete(matesKey)
		c.cache.Delete(profileKey)
	case datahub.ProfileUpdated:
		c.cache.Delete(profileKey)
	case datahub.AllDataChanged:
		c.cache.Flush()
	default:
		logger.Warningf("flushing cache for %s", event)
		c.cache.Flush()
	}
}

func (c *Cached) deleteDoses() {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, dosesPrefix) {
			c.cache.Delete(key)
		}
	}
}

// read returns the cached value for key, loading and storing it on a miss.
func read[T any](c *Cached, key string, load func() (T, error)) (T, error) {
	if value, ok := c.cache.Get(key); ok {
		if v, ok := value.(T); ok {
			return v, nil
		}
		logger.Errorf("cached %q has type %T", key, value)
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	value, err := load()
	if err != nil {
		var zero T
		return zero, errors.Trace(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.cache.SetDefault(key, value)
	}
	return value, nil
}
