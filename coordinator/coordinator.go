// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
	"github.com/PastaPastaPasta/dash-evo-tool/platform"
	"github.com/PastaPastaPasta/dash-evo-tool/projection"
	"github.com/PastaPastaPasta/dash-evo-tool/refresh"
	"github.com/PastaPastaPasta/dash-evo-tool/status"
	"github.com/PastaPastaPasta/dash-evo-tool/store"
	"github.com/PastaPastaPasta/dash-evo-tool/utils/timer/mockable"
	"github.com/PastaPastaPasta/dash-evo-tool/voting"
)

// Dependencies is the explicit collaborator set the coordinator is built
// from. There is no ambient global state.
type Dependencies struct {
	Log    log.Logger
	Store  store.Store
	Client platform.Client
	Signer platform.Signer

	// Clock defaults to real time when nil.
	Clock *mockable.Clock

	// Registerer defaults to a private registry when nil.
	Registerer metric.Registerer

	StaleAfter time.Duration
	StatusTTL  time.Duration
}

// RenderState is what the UI collaborator receives on each render tick.
type RenderState struct {
	Contests []model.ContestedResource
	Sort     projection.SortState

	Status    *status.Message
	StatusAge time.Duration

	VotingIdentities []model.VotingIdentity
	UserIdentities   []model.VotingIdentity

	// Busy reports whether any refresh or submission is still in flight.
	Busy bool
}

// Coordinator owns the contested-resource state machine: it validates
// intents, dispatches refreshes and submissions off the render path, and
// folds their results back into the cache and the status bus.
type Coordinator struct {
	log       log.Logger
	store     store.Store
	sync      *refresh.Synchronizer
	submitter *voting.Submitter
	bus       *status.Bus

	mu        sync.Mutex
	sortState projection.SortState

	wg       sync.WaitGroup
	inFlight atomic.Int64
}

func New(deps Dependencies) (*Coordinator, error) {
	if deps.Clock == nil {
		deps.Clock = &mockable.Clock{}
	}
	if deps.Registerer == nil {
		deps.Registerer = metric.NewRegistry()
	}

	synchronizer, err := refresh.New(
		deps.Log,
		deps.Client,
		deps.Store,
		deps.Clock,
		deps.StaleAfter,
		deps.Registerer,
	)
	if err != nil {
		return nil, err
	}
	submitter, err := voting.New(
		deps.Log,
		deps.Client,
		deps.Signer,
		synchronizer,
		deps.Registerer,
	)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		log:       deps.Log,
		store:     deps.Store,
		sync:      synchronizer,
		submitter: submitter,
		bus:       status.NewBus(deps.Clock, deps.StatusTTL),
	}, nil
}

// Handle dispatches one intent. Refreshes and submissions run on background
// goroutines and report through the status bus; sort and dismissal are
// synchronous. Handle never blocks on network I/O.
func (c *Coordinator) Handle(ctx context.Context, intent Intent) {
	switch intent := intent.(type) {
	case RefreshAll:
		c.dispatch(func() {
			c.refreshAll(ctx)
		})
	case CastVote:
		if !c.validateVote(intent.Intent) {
			return
		}
		c.dispatch(func() {
			c.castVote(ctx, intent.Intent)
		})
	case DismissStatus:
		c.bus.Dismiss()
	case ToggleSort:
		c.mu.Lock()
		c.sortState.Toggle(intent.Column)
		c.mu.Unlock()
	default:
		c.log.Warn("ignoring unknown intent", log.String("intent", fmt.Sprintf("%T", intent)))
	}
}

// Snapshot assembles the current render state. Reads are cache-only: a
// storage failure degrades to an empty view rather than an error.
func (c *Coordinator) Snapshot() RenderState {
	contests, err := c.store.GetContests()
	if err != nil {
		c.log.Error("failed to read cached contests", log.Err(err))
		contests = nil
	}
	votingIdentities, err := c.store.GetVotingIdentities()
	if err != nil {
		c.log.Error("failed to read voting identities", log.Err(err))
		votingIdentities = nil
	}
	userIdentities, err := c.store.GetUserIdentities()
	if err != nil {
		c.log.Error("failed to read user identities", log.Err(err))
		userIdentities = nil
	}

	c.mu.Lock()
	sortState := c.sortState
	c.mu.Unlock()

	state := RenderState{
		Contests:         projection.Project(contests, sortState),
		Sort:             sortState,
		VotingIdentities: votingIdentities,
		UserIdentities:   userIdentities,
		Busy:             c.inFlight.Load() > 0,
	}
	if message, age, ok := c.bus.Current(); ok {
		state.Status = &message
		state.StatusAge = age
	}
	return state
}

// Close waits for in-flight refreshes and submissions to finish. Dispatched
// work always runs to completion; there is no mid-flight cancellation.
func (c *Coordinator) Close() error {
	c.wg.Wait()
	return c.store.Close()
}

// Wait blocks until all dispatched work has resolved. Intended for callers
// that need a quiescent view, such as one-shot commands.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) dispatch(work func()) {
	c.wg.Add(1)
	c.inFlight.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.inFlight.Add(-1)
		work()
	}()
}

func (c *Coordinator) refreshAll(ctx context.Context) {
	if err := c.sync.RefreshAll(ctx); err != nil {
		c.log.Error("refresh failed", log.Err(err))
		c.bus.Post(fmt.Sprintf("Failed to refresh contests: %s", err), status.Error)
		return
	}
	c.bus.Post("Contests refreshed", status.Success)
}

// validateVote checks the intent against locally known identities before any
// network work. Invalid intents surface on the status bus and are dropped.
func (c *Coordinator) validateVote(intent model.VoteIntent) bool {
	if err := intent.Verify(); err != nil {
		c.bus.Post(fmt.Sprintf("Invalid vote: %s", err), status.Error)
		return false
	}

	identities, err := c.store.GetVotingIdentities()
	if err != nil {
		c.log.Error("failed to read voting identities", log.Err(err))
		identities = nil
	}
	known := make(map[string]struct{}, len(identities))
	for _, identity := range identities {
		known[identity.Identity.String()] = struct{}{}
	}
	for _, voter := range intent.Voters {
		if _, ok := known[voter.String()]; !ok {
			c.bus.Post(
				fmt.Sprintf("Identity %s is not eligible to vote", voter),
				status.Error,
			)
			return false
		}
	}
	return true
}

func (c *Coordinator) castVote(ctx context.Context, intent model.VoteIntent) {
	// Submissions resolve one identity at a time, so interim progress is
	// posted as each outcome lands; the final summary overwrites it.
	total := len(intent.Voters)
	resolved := 0
	observe := func(outcome model.SubmissionOutcome) {
		resolved++
		severity := status.Info
		if outcome.Status != model.OutcomeAccepted {
			severity = status.Error
		}
		c.bus.Post(
			fmt.Sprintf("Vote %d/%d for %q: %s", resolved, total, intent.ContestKey, outcome.Status),
			severity,
		)
	}

	outcomes, err := c.submitter.Submit(ctx, intent, observe)
	if err != nil {
		c.bus.Post(fmt.Sprintf("Invalid vote: %s", err), status.Error)
		return
	}
	c.bus.Post(summarize(intent, outcomes))
}

// summarize folds per-identity outcomes into one status line.
func summarize(intent model.VoteIntent, outcomes []model.SubmissionOutcome) (string, status.Severity) {
	var failures []string
	for _, outcome := range outcomes {
		if outcome.Status == model.OutcomeAccepted {
			continue
		}
		short := outcome.Voter.String()
		if len(short) > 8 {
			short = short[:8]
		}
		failures = append(failures, fmt.Sprintf("%s: %s", short, outcome.Reason))
	}
	if len(failures) == 0 {
		return fmt.Sprintf(
			"All %d votes accepted for %q",
			len(outcomes), intent.ContestKey,
		), status.Success
	}
	return fmt.Sprintf(
		"%d/%d votes failed for %q: %s",
		len(failures), len(outcomes), intent.ContestKey,
		strings.Join(failures, "; "),
	), status.Error
}
