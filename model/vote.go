// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package model

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
)

var (
	ErrNoVoters        = errors.New("vote intent names no voting identities")
	ErrDuplicateVoter  = errors.New("vote intent names the same identity twice")
	ErrUnknownChoice   = errors.New("unknown vote choice")
	ErrEmptyContestant = errors.New("toward-contestant choice requires a contestant identity")
	ErrStrayContestant = errors.New("lock and abstain choices must not name a contestant")
)

// VoteChoiceKind enumerates the outcomes a vote can be cast toward.
type VoteChoiceKind uint8

const (
	// ChoiceTowardContestant assigns the name to a specific contestant.
	ChoiceTowardContestant VoteChoiceKind = iota
	// ChoiceLock permanently reserves the name instead of assigning it.
	ChoiceLock
	// ChoiceAbstain declines to choose among contestants or locking.
	ChoiceAbstain
)

// VoteChoice is the chosen outcome of a vote. Contestant is only meaningful
// for ChoiceTowardContestant.
type VoteChoice struct {
	Kind       VoteChoiceKind
	Contestant ids.ID
}

func TowardContestant(contestant ids.ID) VoteChoice {
	return VoteChoice{Kind: ChoiceTowardContestant, Contestant: contestant}
}

func Lock() VoteChoice {
	return VoteChoice{Kind: ChoiceLock}
}

func Abstain() VoteChoice {
	return VoteChoice{Kind: ChoiceAbstain}
}

func (c VoteChoice) Verify() error {
	switch c.Kind {
	case ChoiceTowardContestant:
		if c.Contestant == ids.Empty {
			return ErrEmptyContestant
		}
	case ChoiceLock, ChoiceAbstain:
		if c.Contestant != ids.Empty {
			return ErrStrayContestant
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownChoice, c.Kind)
	}
	return nil
}

func (c VoteChoice) String() string {
	switch c.Kind {
	case ChoiceTowardContestant:
		return "toward " + c.Contestant.String()
	case ChoiceLock:
		return "lock"
	case ChoiceAbstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// VoteIntent is a user-confirmed request to cast one choice on one contest
// with an ordered set of voting identities. Intents are ephemeral: they are
// consumed by a single submission and never persisted. A partial failure
// requires the user to confirm a new intent for the remaining identities.
type VoteIntent struct {
	ContestKey string
	Choice     VoteChoice
	Voters     []ids.ID
}

func (i VoteIntent) Verify() error {
	if i.ContestKey == "" {
		return ErrEmptyContestKey
	}
	if i.ContestKey != NormalizeName(i.ContestKey) {
		return fmt.Errorf("contested name %q is not in canonical form", i.ContestKey)
	}
	if err := i.Choice.Verify(); err != nil {
		return err
	}
	if len(i.Voters) == 0 {
		return ErrNoVoters
	}
	seen := make(map[ids.ID]struct{}, len(i.Voters))
	for _, voter := range i.Voters {
		if _, ok := seen[voter]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateVoter, voter)
		}
		seen[voter] = struct{}{}
	}
	return nil
}

// OutcomeStatus classifies the result of one identity's submission.
type OutcomeStatus uint8

const (
	// OutcomeAccepted means the platform accepted the vote.
	OutcomeAccepted OutcomeStatus = iota
	// OutcomeRejected means the platform rejected the vote terminally:
	// ineligible identity, contest already resolved, invalid choice.
	OutcomeRejected
	// OutcomeNetworkError means the submission failed at the transport
	// level after exhausting retries. The vote may or may not have been
	// recorded.
	OutcomeNetworkError
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNetworkError:
		return "network-error"
	default:
		return "unknown"
	}
}

// SubmissionOutcome is the terminal result for one (intent, identity) pair.
// Outcomes live only as long as the status surface that displays them.
type SubmissionOutcome struct {
	Voter    ids.ID
	Status   OutcomeStatus
	Reason   string
	Attempts int
}
