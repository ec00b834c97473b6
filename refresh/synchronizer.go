// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"golang.org/x/sync/singleflight"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
	"github.com/PastaPastaPasta/dash-evo-tool/platform"
	"github.com/PastaPastaPasta/dash-evo-tool/store"
	"github.com/PastaPastaPasta/dash-evo-tool/utils/timer/mockable"
)

const DefaultStaleAfter = 5 * time.Minute

// refreshAllKey cannot collide with a contest key: normalized names never
// contain a NUL byte.
const refreshAllKey = "\x00all"

// Synchronizer pulls contest state from the platform and replaces cached
// snapshots wholesale. Concurrent refreshes for the same contest key are
// coalesced into a single in-flight query; refreshes for different keys
// proceed independently.
type Synchronizer struct {
	log        log.Logger
	client     platform.Client
	store      store.Store
	clock      *mockable.Clock
	staleAfter time.Duration

	group   singleflight.Group
	metrics *syncMetrics
}

func New(
	logger log.Logger,
	client platform.Client,
	cache store.Store,
	clock *mockable.Clock,
	staleAfter time.Duration,
	registerer metric.Registerer,
) (*Synchronizer, error) {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	metrics, err := newSyncMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Synchronizer{
		log:        logger,
		client:     client,
		store:      cache,
		clock:      clock,
		staleAfter: staleAfter,
		metrics:    metrics,
	}, nil
}

// RefreshOne synchronizes one contest. If a refresh for the same key is
// already in flight, the caller observes that refresh's result instead of
// issuing a duplicate query.
func (s *Synchronizer) RefreshOne(ctx context.Context, key string) (model.ContestedResource, error) {
	contest, executed, err := s.refreshOneShared(ctx, key)
	// Only callers that joined another caller's flight count as coalesced;
	// the executing caller does not.
	if !executed {
		s.metrics.coalesced.Inc()
	}
	return contest, err
}

func (s *Synchronizer) refreshOneShared(ctx context.Context, key string) (model.ContestedResource, bool, error) {
	executed := false
	contestIntf, err, _ := s.group.Do(key, func() (interface{}, error) {
		executed = true
		return s.refreshOne(ctx, key)
	})
	if err != nil {
		return model.ContestedResource{}, executed, err
	}
	return contestIntf.(model.ContestedResource), executed, nil
}

func (s *Synchronizer) refreshOne(ctx context.Context, key string) (model.ContestedResource, error) {
	queriedAt := s.clock.Unix()
	fresh, err := s.client.ContestedResource(ctx, key)
	if err != nil {
		// The cache keeps its prior snapshot; its unchanged LastSynced
		// marks it stale.
		s.metrics.failures.Inc()
		return model.ContestedResource{}, fmt.Errorf("failed to query contest %q: %w", key, err)
	}
	if fresh.NormalizedName != key {
		s.metrics.failures.Inc()
		return model.ContestedResource{}, fmt.Errorf(
			"%w: queried contest %q, got %q",
			platform.ErrMalformed, key, fresh.NormalizedName,
		)
	}

	if err := s.replace(&fresh, queriedAt); err != nil {
		s.metrics.failures.Inc()
		return model.ContestedResource{}, err
	}
	s.metrics.refreshes.Inc()
	return fresh, nil
}

// RefreshAll synchronizes the full open-contest set. Cached contests absent
// from the fresh set are no longer open and are pruned. A failure on one
// contest does not abort the rest.
func (s *Synchronizer) RefreshAll(ctx context.Context) error {
	executed := false
	_, err, _ := s.group.Do(refreshAllKey, func() (interface{}, error) {
		executed = true
		return nil, s.refreshAll(ctx)
	})
	if !executed {
		s.metrics.coalesced.Inc()
	}
	return err
}

func (s *Synchronizer) refreshAll(ctx context.Context) error {
	queriedAt := s.clock.Unix()
	freshContests, err := s.client.ContestedResources(ctx)
	if err != nil {
		s.metrics.failures.Inc()
		return fmt.Errorf("failed to query open contests: %w", err)
	}

	cached, err := s.store.GetContests()
	if err != nil {
		s.log.Warn("failed to read cached contests before merge", log.Err(err))
	}

	openKeys := make(map[string]struct{}, len(freshContests))
	var errs []error
	for i := range freshContests {
		fresh := freshContests[i]
		openKeys[fresh.NormalizedName] = struct{}{}
		if err := s.replace(&fresh, queriedAt); err != nil {
			s.metrics.failures.Inc()
			errs = append(errs, err)
			continue
		}
		s.metrics.refreshes.Inc()
	}

	for _, prev := range cached {
		if _, open := openKeys[prev.NormalizedName]; open {
			continue
		}
		s.log.Info("pruning resolved contest", log.String("contest", prev.NormalizedName))
		if err := s.store.DeleteContest(prev.NormalizedName); err != nil {
			errs = append(errs, err)
		}
	}

	s.metrics.contestsCached.Set(float64(len(freshContests)))
	return errors.Join(errs...)
}

// replace overwrites the cached snapshot for fresh.NormalizedName, carrying
// forward a previously observed end time. queriedAt is when the query that
// produced fresh began: a snapshot from a round that started before the
// cached snapshot's sync time is discarded, so a slow full-set query cannot
// stamp an older round's tallies over a newer targeted refresh.
func (s *Synchronizer) replace(fresh *model.ContestedResource, queriedAt int64) error {
	prev, err := s.store.GetContest(fresh.NormalizedName)
	switch {
	case err == nil:
		if prev.LastSynced > queriedAt {
			s.log.Info("discarding superseded snapshot",
				log.String("contest", fresh.NormalizedName),
			)
			return nil
		}
		if err := fresh.PreserveEndTime(&prev); err != nil {
			return fmt.Errorf("rejecting snapshot for %q: %w", fresh.NormalizedName, err)
		}
	case !errors.Is(err, store.ErrNotCached):
		s.log.Warn("failed to read cached contest",
			log.String("contest", fresh.NormalizedName),
			log.Err(err),
		)
	}

	fresh.LastSynced = s.clock.Unix()
	return s.store.ReplaceContest(*fresh)
}

// Stale reports whether a cached snapshot is older than the staleness
// window.
func (s *Synchronizer) Stale(contest model.ContestedResource, now time.Time) bool {
	if contest.LastSynced == 0 {
		return true
	}
	return now.Sub(time.Unix(contest.LastSynced, 0)) > s.staleAfter
}
