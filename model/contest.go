// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/ids"
)

var (
	ErrEmptyContestKey = errors.New("empty contested name")
	ErrEndTimeMutation = errors.New("contest end time is immutable once observed")
)

// Contestant is one claimant competing for a contested name. Votes are
// replaced wholesale by a sync, never accumulated locally.
type Contestant struct {
	Identity ids.ID
	Name     string
	Votes    uint32
}

// ContestedResource is the last-known snapshot of one contest. LockedVotes,
// AbstainVotes and EndTime are nil until the first successful sync reports
// them.
type ContestedResource struct {
	// NormalizedName is the canonical form of the contested name and the
	// unique cache key.
	NormalizedName string

	LockedVotes  *uint32
	AbstainVotes *uint32

	// EndTime is the end of the contest window in epoch milliseconds.
	EndTime *int64

	// LastSynced is the unix time of the last successful sync for this
	// contest.
	LastSynced int64

	Contestants []Contestant
}

// Verify checks structural validity of a snapshot before it is cached.
func (c *ContestedResource) Verify() error {
	if c.NormalizedName == "" {
		return ErrEmptyContestKey
	}
	if c.NormalizedName != NormalizeName(c.NormalizedName) {
		return fmt.Errorf("contested name %q is not in canonical form", c.NormalizedName)
	}
	return nil
}

// PreserveEndTime carries the previously observed end time into this
// snapshot. A contest's end time never changes on the platform, so a fresh
// query disagreeing with the cached value indicates a malformed response and
// is rejected.
func (c *ContestedResource) PreserveEndTime(prev *ContestedResource) error {
	if prev == nil || prev.EndTime == nil {
		return nil
	}
	if c.EndTime != nil && *c.EndTime != *prev.EndTime {
		return fmt.Errorf("%w: cached %d, fresh %d", ErrEndTimeMutation, *prev.EndTime, *c.EndTime)
	}
	if c.EndTime == nil {
		end := *prev.EndTime
		c.EndTime = &end
	}
	return nil
}

// MaxContestantVotes returns the highest vote count among the contestants.
func (c *ContestedResource) MaxContestantVotes() uint32 {
	var maxVotes uint32
	for _, contestant := range c.Contestants {
		if contestant.Votes > maxVotes {
			maxVotes = contestant.Votes
		}
	}
	return maxVotes
}

// NormalizeName maps a contested name to its canonical form. DPNS treats
// names case-insensitively and maps the homograph characters o/l to 0/1.
func NormalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case 'o':
			return '0'
		case 'l':
			return '1'
		default:
			return r
		}
	}, lowered)
}
