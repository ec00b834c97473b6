// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
	"github.com/PastaPastaPasta/dash-evo-tool/platform"
	"github.com/PastaPastaPasta/dash-evo-tool/projection"
	"github.com/PastaPastaPasta/dash-evo-tool/status"
	"github.com/PastaPastaPasta/dash-evo-tool/store"
	"github.com/PastaPastaPasta/dash-evo-tool/utils/timer/mockable"
)

// mockClient implements platform.Client for testing
type mockClient struct {
	mu       sync.Mutex
	contests map[string]model.ContestedResource
	queryErr error
	reject   map[ids.ID]string
	submits  int

	// When set, the second submission signals secondStarted and then
	// blocks until secondGate is closed.
	secondGate    chan struct{}
	secondStarted chan struct{}
}

func (m *mockClient) ContestedResources(context.Context) ([]model.ContestedResource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	contests := make([]model.ContestedResource, 0, len(m.contests))
	for _, contest := range m.contests {
		contests = append(contests, contest)
	}
	return contests, nil
}

func (m *mockClient) ContestedResource(_ context.Context, key string) (model.ContestedResource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return model.ContestedResource{}, m.queryErr
	}
	contest, ok := m.contests[key]
	if !ok {
		return model.ContestedResource{}, platform.ErrMalformed
	}
	return contest, nil
}

func (m *mockClient) SubmitVote(_ context.Context, vote platform.SignedVote) (platform.SubmitResult, error) {
	m.mu.Lock()
	m.submits++
	submits := m.submits
	reason, rejected := m.reject[vote.Voter]
	gate := m.secondGate
	started := m.secondStarted
	m.mu.Unlock()

	if submits == 2 && gate != nil {
		close(started)
		<-gate
	}
	if rejected {
		return platform.SubmitResult{Reason: reason}, nil
	}
	return platform.SubmitResult{Accepted: true}, nil
}

// mockSigner implements platform.Signer for testing
type mockSigner struct{}

func (mockSigner) SignVote(voter ids.ID, contestKey string, choice model.VoteChoice) (platform.SignedVote, error) {
	return platform.SignedVote{
		Voter:      voter,
		ContestKey: contestKey,
		Choice:     choice,
		Payload:    []byte{1},
		Signature:  []byte{2},
	}, nil
}

func newTestCoordinator(t *testing.T, client platform.Client) (*Coordinator, store.Store, *mockable.Clock) {
	require := require.New(t)

	cache := store.New(memdb.New(), log.NoLog{})
	clock := &mockable.Clock{}
	clock.Set(time.Unix(1690000000, 0))

	c, err := New(Dependencies{
		Log:    log.NoLog{},
		Store:  cache,
		Client: client,
		Signer: mockSigner{},
		Clock:  clock,
	})
	require.NoError(err)
	return c, cache, clock
}

func TestRefreshAllIntent(t *testing.T) {
	require := require.New(t)

	locked := uint32(42)
	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"b0b":   {NormalizedName: "b0b"},
			"a1ice": {NormalizedName: "a1ice", LockedVotes: &locked},
		},
	}
	c, _, _ := newTestCoordinator(t, client)

	c.Handle(context.Background(), RefreshAll{})
	c.Wait()

	state := c.Snapshot()
	require.Len(state.Contests, 2)
	// Default sort: ascending by contested name.
	require.Equal("a1ice", state.Contests[0].NormalizedName)
	require.NotNil(state.Status)
	require.Equal(status.Success, state.Status.Severity)
	require.False(state.Busy)
}

func TestRefreshFailureKeepsCachedView(t *testing.T) {
	require := require.New(t)

	client := &mockClient{queryErr: platform.ErrTimeout}
	c, cache, _ := newTestCoordinator(t, client)

	prior := model.ContestedResource{NormalizedName: "a1ice", LastSynced: 1600000000}
	require.NoError(cache.ReplaceContest(prior))

	c.Handle(context.Background(), RefreshAll{})
	c.Wait()

	state := c.Snapshot()
	require.Len(state.Contests, 1)
	require.Equal(prior.NormalizedName, state.Contests[0].NormalizedName)
	require.Equal(prior.LastSynced, state.Contests[0].LastSynced)
	require.NotNil(state.Status)
	require.Equal(status.Error, state.Status.Severity)
}

func TestToggleSortIntent(t *testing.T) {
	require := require.New(t)

	c, cache, _ := newTestCoordinator(t, &mockClient{})
	require.NoError(cache.ReplaceContest(model.ContestedResource{NormalizedName: "a1ice"}))
	require.NoError(cache.ReplaceContest(model.ContestedResource{NormalizedName: "b0b"}))

	ctx := context.Background()

	c.Handle(ctx, ToggleSort{Column: projection.ContestedName})
	state := c.Snapshot()
	require.Equal(projection.Descending, state.Sort.Order)
	require.Equal("b0b", state.Contests[0].NormalizedName)

	// A second toggle of the same column returns to ascending.
	c.Handle(ctx, ToggleSort{Column: projection.ContestedName})
	state = c.Snapshot()
	require.Equal(projection.Ascending, state.Sort.Order)
	require.Equal("a1ice", state.Contests[0].NormalizedName)

	// Selecting a new column resets to ascending.
	c.Handle(ctx, ToggleSort{Column: projection.ContestedName})
	c.Handle(ctx, ToggleSort{Column: projection.LockedVotes})
	state = c.Snapshot()
	require.Equal(projection.LockedVotes, state.Sort.Column)
	require.Equal(projection.Ascending, state.Sort.Order)
}

func TestCastVoteIntent(t *testing.T) {
	require := require.New(t)

	voterA := ids.GenerateTestID()
	voterB := ids.GenerateTestID()

	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"a1ice": {NormalizedName: "a1ice"},
		},
		reject: map[ids.ID]string{voterA: "contest closed"},
	}
	c, cache, _ := newTestCoordinator(t, client)

	for _, voter := range []ids.ID{voterA, voterB} {
		require.NoError(cache.PutIdentity(model.VotingIdentity{
			Identity: voter,
			Type:     model.IdentityEvonode,
		}))
	}

	c.Handle(context.Background(), CastVote{Intent: model.VoteIntent{
		ContestKey: "a1ice",
		Choice:     model.Lock(),
		Voters:     []ids.ID{voterA, voterB},
	}})
	c.Wait()

	require.Equal(2, client.submits)

	state := c.Snapshot()
	require.NotNil(state.Status)
	require.Equal(status.Error, state.Status.Severity)
	require.Contains(state.Status.Text, "1/2 votes failed")
	require.Contains(state.Status.Text, "contest closed")

	// The post-submission refresh cached the affected contest.
	_, err := cache.GetContest("a1ice")
	require.NoError(err)
}

func TestCastVoteReportsPerIdentityProgress(t *testing.T) {
	require := require.New(t)

	voterA := ids.GenerateTestID()
	voterB := ids.GenerateTestID()

	client := &mockClient{
		contests: map[string]model.ContestedResource{
			"a1ice": {NormalizedName: "a1ice"},
		},
		secondGate:    make(chan struct{}),
		secondStarted: make(chan struct{}),
	}
	c, cache, _ := newTestCoordinator(t, client)

	for _, voter := range []ids.ID{voterA, voterB} {
		require.NoError(cache.PutIdentity(model.VotingIdentity{
			Identity: voter,
			Type:     model.IdentityMasternode,
		}))
	}

	c.Handle(context.Background(), CastVote{Intent: model.VoteIntent{
		ContestKey: "a1ice",
		Choice:     model.Abstain(),
		Voters:     []ids.ID{voterA, voterB},
	}})

	// Once the second submission is in flight, the first identity's
	// outcome is already on the bus.
	<-client.secondStarted
	state := c.Snapshot()
	require.True(state.Busy)
	require.NotNil(state.Status)
	require.Contains(state.Status.Text, "Vote 1/2")
	require.Contains(state.Status.Text, "accepted")

	close(client.secondGate)
	c.Wait()

	state = c.Snapshot()
	require.NotNil(state.Status)
	require.Equal(status.Success, state.Status.Severity)
	require.Contains(state.Status.Text, "All 2 votes accepted")
}

func TestCastVoteRejectsUnknownIdentity(t *testing.T) {
	require := require.New(t)

	client := &mockClient{}
	c, _, _ := newTestCoordinator(t, client)

	c.Handle(context.Background(), CastVote{Intent: model.VoteIntent{
		ContestKey: "a1ice",
		Choice:     model.Abstain(),
		Voters:     []ids.ID{ids.GenerateTestID()},
	}})
	c.Wait()

	require.Zero(client.submits)

	state := c.Snapshot()
	require.NotNil(state.Status)
	require.Equal(status.Error, state.Status.Severity)
}

func TestDismissStatusIntent(t *testing.T) {
	require := require.New(t)

	c, _, _ := newTestCoordinator(t, &mockClient{contests: map[string]model.ContestedResource{}})

	ctx := context.Background()
	c.Handle(ctx, RefreshAll{})
	c.Wait()
	require.NotNil(c.Snapshot().Status)

	c.Handle(ctx, DismissStatus{})
	require.Nil(c.Snapshot().Status)
}

func TestStatusExpiresOnRenderTicks(t *testing.T) {
	require := require.New(t)

	c, _, clock := newTestCoordinator(t, &mockClient{contests: map[string]model.ContestedResource{}})

	c.Handle(context.Background(), RefreshAll{})
	c.Wait()

	clock.Advance(4 * time.Second)
	require.NotNil(c.Snapshot().Status)

	clock.Advance(2 * time.Second)
	require.Nil(c.Snapshot().Status)
}
