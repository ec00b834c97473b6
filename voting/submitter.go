// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package voting

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
	"github.com/PastaPastaPasta/dash-evo-tool/platform"
)

const (
	// DefaultMaxTries bounds submission attempts per identity, counting
	// the first attempt.
	DefaultMaxTries = 3

	defaultInitialBackoff = 500 * time.Millisecond
)

// Refresher is the targeted-refresh dependency used after a submission
// round, satisfied by refresh.Synchronizer.
type Refresher interface {
	RefreshOne(ctx context.Context, key string) (model.ContestedResource, error)
}

// Submitter turns a vote intent into one signed submission per identity.
// Submissions are per-identity independent: a failure for one identity never
// blocks or rolls back the others, and there is no batch transaction.
type Submitter struct {
	log       log.Logger
	client    platform.Client
	signer    platform.Signer
	refresher Refresher
	metrics   *voteMetrics

	maxTries       uint
	initialBackoff time.Duration
}

func New(
	logger log.Logger,
	client platform.Client,
	signer platform.Signer,
	refresher Refresher,
	registerer metric.Registerer,
) (*Submitter, error) {
	metrics, err := newVoteMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Submitter{
		log:       logger,
		client:    client,
		signer:    signer,
		refresher: refresher,
		metrics:   metrics,

		maxTries:       DefaultMaxTries,
		initialBackoff: defaultInitialBackoff,
	}, nil
}

// Submit casts the intent's choice with each of its identities in order and
// returns one outcome per identity, in that order. If observe is non-nil it
// is invoked with each outcome as it resolves, so callers can surface
// per-identity progress. After all identities resolve, the affected contest
// is refreshed once so displayed tallies catch up with the just-cast votes;
// that refresh is best-effort since the platform's own vote counting can lag.
func (s *Submitter) Submit(
	ctx context.Context,
	intent model.VoteIntent,
	observe func(model.SubmissionOutcome),
) ([]model.SubmissionOutcome, error) {
	if err := intent.Verify(); err != nil {
		return nil, err
	}

	outcomes := make([]model.SubmissionOutcome, 0, len(intent.Voters))
	for _, voter := range intent.Voters {
		outcome := s.submitOne(ctx, intent, voter)
		s.metrics.observe(outcome)
		s.log.Info("vote submission resolved",
			log.String("contest", intent.ContestKey),
			log.Stringer("voter", voter),
			log.Stringer("status", outcome.Status),
			log.Int("attempts", outcome.Attempts),
		)
		if observe != nil {
			observe(outcome)
		}
		outcomes = append(outcomes, outcome)
	}

	if _, err := s.refresher.RefreshOne(ctx, intent.ContestKey); err != nil {
		s.log.Warn("post-submission refresh failed",
			log.String("contest", intent.ContestKey),
			log.Err(err),
		)
	}
	return outcomes, nil
}

func (s *Submitter) submitOne(
	ctx context.Context,
	intent model.VoteIntent,
	voter ids.ID,
) model.SubmissionOutcome {
	signed, err := s.signer.SignVote(voter, intent.ContestKey, intent.Choice)
	if err != nil {
		// A signing failure is terminal for this identity only.
		return model.SubmissionOutcome{
			Voter:  voter,
			Status: model.OutcomeRejected,
			Reason: err.Error(),
		}
	}

	attempts := 0
	operation := func() (platform.SubmitResult, error) {
		attempts++
		result, err := s.client.SubmitVote(ctx, signed)
		if err != nil {
			if platform.IsRetryable(err) {
				return platform.SubmitResult{}, err
			}
			return platform.SubmitResult{}, backoff.Permanent(err)
		}
		return result, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.initialBackoff

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(s.maxTries),
	)
	switch {
	case err == nil && result.Accepted:
		return model.SubmissionOutcome{
			Voter:    voter,
			Status:   model.OutcomeAccepted,
			Attempts: attempts,
		}
	case err == nil:
		// Platform-level rejection: terminal, never retried.
		return model.SubmissionOutcome{
			Voter:    voter,
			Status:   model.OutcomeRejected,
			Reason:   result.Reason,
			Attempts: attempts,
		}
	case platform.IsRetryable(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded):
		return model.SubmissionOutcome{
			Voter:    voter,
			Status:   model.OutcomeNetworkError,
			Reason:   err.Error(),
			Attempts: attempts,
		}
	default:
		return model.SubmissionOutcome{
			Voter:    voter,
			Status:   model.OutcomeRejected,
			Reason:   err.Error(),
			Attempts: attempts,
		}
	}
}
