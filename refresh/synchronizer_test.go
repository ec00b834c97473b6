// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
	"github.com/PastaPastaPasta/dash-evo-tool/platform"
	"github.com/PastaPastaPasta/dash-evo-tool/store"
	"github.com/PastaPastaPasta/dash-evo-tool/utils/timer/mockable"
)

// mockClient implements platform.Client for testing
type mockClient struct {
	mu       sync.Mutex
	queries  int
	contests map[string]model.ContestedResource
	err      error

	// When set, single-contest queries block here until the channel is
	// closed.
	gate chan struct{}

	// When set, full-set queries signal allStarted after reading the
	// contest map, then block on allGate until it is closed.
	allGate    chan struct{}
	allStarted chan struct{}
}

func (m *mockClient) ContestedResources(context.Context) ([]model.ContestedResource, error) {
	m.mu.Lock()
	m.queries++
	err := m.err
	contests := make([]model.ContestedResource, 0, len(m.contests))
	for _, contest := range m.contests {
		contests = append(contests, contest)
	}
	allGate := m.allGate
	allStarted := m.allStarted
	m.mu.Unlock()

	if allStarted != nil {
		close(allStarted)
	}
	if allGate != nil {
		<-allGate
	}
	if err != nil {
		return nil, err
	}
	return contests, nil
}

func (m *mockClient) ContestedResource(_ context.Context, key string) (model.ContestedResource, error) {
	m.mu.Lock()
	m.queries++
	err := m.err
	contest, ok := m.contests[key]
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return model.ContestedResource{}, err
	}
	if !ok {
		return model.ContestedResource{}, platform.ErrMalformed
	}
	return contest, nil
}

func (m *mockClient) SubmitVote(context.Context, platform.SignedVote) (platform.SubmitResult, error) {
	return platform.SubmitResult{}, errors.New("unexpected submission")
}

func (m *mockClient) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

func (m *mockClient) setContest(contest model.ContestedResource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contests[contest.NormalizedName] = contest
}

func newTestSynchronizer(t *testing.T, client platform.Client) (*Synchronizer, store.Store, *mockable.Clock) {
	require := require.New(t)

	cache := store.New(memdb.New(), log.NoLog{})
	clock := &mockable.Clock{}
	clock.Set(time.Unix(1690000000, 0))

	syncer, err := New(log.NoLog{}, client, cache, clock, 0, metric.NewRegistry())
	require.NoError(err)
	return syncer, cache, clock
}

func TestRefreshOneUpdatesCache(t *testing.T) {
	require := require.New(t)

	locked := uint32(42)
	end := int64(1700000000000)
	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"a1ice": {
				NormalizedName: "a1ice",
				LockedVotes:    &locked,
				EndTime:        &end,
			},
		},
	}
	syncer, cache, clock := newTestSynchronizer(t, client)

	// Seed the cache with a not-yet-fetched contest and an unrelated one.
	require.NoError(cache.ReplaceContest(model.ContestedResource{NormalizedName: "a1ice"}))
	require.NoError(cache.ReplaceContest(model.ContestedResource{NormalizedName: "b0b", LastSynced: 7}))

	contest, err := syncer.RefreshOne(context.Background(), "a1ice")
	require.NoError(err)
	require.Equal(uint32(42), *contest.LockedVotes)
	require.Equal(end, *contest.EndTime)
	require.Equal(clock.Unix(), contest.LastSynced)

	cached, err := cache.GetContest("a1ice")
	require.NoError(err)
	require.Equal(contest, cached)

	// The unrelated contest is untouched.
	other, err := cache.GetContest("b0b")
	require.NoError(err)
	require.Equal(int64(7), other.LastSynced)
}

func TestRefreshOneFailureLeavesCacheUntouched(t *testing.T) {
	require := require.New(t)

	client := &mockClient{err: platform.ErrConnection}
	syncer, cache, _ := newTestSynchronizer(t, client)

	locked := uint32(3)
	prior := model.ContestedResource{
		NormalizedName: "a1ice",
		LockedVotes:    &locked,
		LastSynced:     1600000000,
	}
	require.NoError(cache.ReplaceContest(prior))

	_, err := syncer.RefreshOne(context.Background(), "a1ice")
	require.ErrorIs(err, platform.ErrConnection)

	cached, err := cache.GetContest("a1ice")
	require.NoError(err)
	require.Equal(prior, cached)
}

func TestRefreshOneCoalescesConcurrentCalls(t *testing.T) {
	require := require.New(t)

	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"x": {NormalizedName: "x"},
		},
		gate: make(chan struct{}),
	}
	syncer, _, _ := newTestSynchronizer(t, client)

	const callers = 2
	results := make(chan model.ContestedResource, callers)
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contest, err := syncer.RefreshOne(context.Background(), "x")
			results <- contest
			errs <- err
		}()
	}

	// Give both callers time to join the in-flight query, then release it.
	time.Sleep(50 * time.Millisecond)
	close(client.gate)
	wg.Wait()

	require.Equal(1, client.queryCount())

	first := <-results
	second := <-results
	require.Equal(first, second)
	require.NoError(<-errs)
	require.NoError(<-errs)
}

func TestRefreshOneRejectsEndTimeMutation(t *testing.T) {
	require := require.New(t)

	mutated := int64(1800000000000)
	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"a1ice": {NormalizedName: "a1ice", EndTime: &mutated},
		},
	}
	syncer, cache, _ := newTestSynchronizer(t, client)

	end := int64(1700000000000)
	require.NoError(cache.ReplaceContest(model.ContestedResource{
		NormalizedName: "a1ice",
		EndTime:        &end,
		LastSynced:     1600000000,
	}))

	_, err := syncer.RefreshOne(context.Background(), "a1ice")
	require.ErrorIs(err, model.ErrEndTimeMutation)

	// The conflicting snapshot was not cached.
	cached, err := cache.GetContest("a1ice")
	require.NoError(err)
	require.Equal(end, *cached.EndTime)
	require.Equal(int64(1600000000), cached.LastSynced)
}

func TestRefreshAllReplacesAndPrunes(t *testing.T) {
	require := require.New(t)

	locked := uint32(9)
	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"a1ice": {NormalizedName: "a1ice", LockedVotes: &locked},
			"b0b":   {NormalizedName: "b0b"},
		},
	}
	syncer, cache, clock := newTestSynchronizer(t, client)

	// "car01" is resolved: it is cached but no longer reported open.
	require.NoError(cache.ReplaceContest(model.ContestedResource{NormalizedName: "car01"}))

	require.NoError(syncer.RefreshAll(context.Background()))

	contests, err := cache.GetContests()
	require.NoError(err)
	require.Len(contests, 2)
	for _, contest := range contests {
		require.Equal(clock.Unix(), contest.LastSynced)
	}

	_, err = cache.GetContest("car01")
	require.ErrorIs(err, store.ErrNotCached)
}

func TestRefreshAllDoesNotClobberNewerSnapshot(t *testing.T) {
	require := require.New(t)

	stale := uint32(1)
	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"a1ice": {NormalizedName: "a1ice", LockedVotes: &stale},
		},
		allGate:    make(chan struct{}),
		allStarted: make(chan struct{}),
	}
	syncer, cache, clock := newTestSynchronizer(t, client)

	// Start a full refresh and hold its query open after it has read the
	// stale tallies.
	refreshAllErr := make(chan error, 1)
	go func() {
		refreshAllErr <- syncer.RefreshAll(context.Background())
	}()
	<-client.allStarted

	// A later targeted refresh lands a newer snapshot for the same key.
	clock.Advance(time.Second)
	fresh := uint32(42)
	client.setContest(model.ContestedResource{NormalizedName: "a1ice", LockedVotes: &fresh})
	_, err := syncer.RefreshOne(context.Background(), "a1ice")
	require.NoError(err)

	close(client.allGate)
	require.NoError(<-refreshAllErr)

	// The full refresh's older tallies did not overwrite the newer ones.
	cached, err := cache.GetContest("a1ice")
	require.NoError(err)
	require.Equal(uint32(42), *cached.LockedVotes)
	require.Equal(clock.Unix(), cached.LastSynced)
}

func TestRefreshOneReportsSingleExecutor(t *testing.T) {
	require := require.New(t)

	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"x": {NormalizedName: "x"},
		},
		gate: make(chan struct{}),
	}
	syncer, _, _ := newTestSynchronizer(t, client)

	const callers = 4
	executions := make(chan bool, callers)
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, executed, err := syncer.refreshOneShared(context.Background(), "x")
			executions <- executed
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(client.gate)
	wg.Wait()
	close(executions)

	for i := 0; i < callers; i++ {
		require.NoError(<-errs)
	}

	// Exactly one caller executed the flight; the rest joined it.
	executors := 0
	for executed := range executions {
		if executed {
			executors++
		}
	}
	require.Equal(1, executors)
	require.Equal(1, client.queryCount())
}

func TestStale(t *testing.T) {
	require := require.New(t)

	syncer, _, clock := newTestSynchronizer(t, &mockClient{})
	now := clock.Time()

	require.True(syncer.Stale(model.ContestedResource{}, now))

	fresh := model.ContestedResource{LastSynced: now.Unix()}
	require.False(syncer.Stale(fresh, now))
	require.True(syncer.Stale(fresh, now.Add(DefaultStaleAfter+time.Second)))
}
