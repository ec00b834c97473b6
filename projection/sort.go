// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package projection

import (
	"cmp"
	"slices"
	"strings"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

// SortColumn selects which contest attribute orders the projection.
type SortColumn uint8

const (
	ContestedName SortColumn = iota
	LockedVotes
	AbstainVotes
	EndTime
	LastUpdated
)

func (c SortColumn) String() string {
	switch c {
	case ContestedName:
		return "contested-name"
	case LockedVotes:
		return "locked-votes"
	case AbstainVotes:
		return "abstain-votes"
	case EndTime:
		return "end-time"
	case LastUpdated:
		return "last-updated"
	default:
		return "unknown"
	}
}

type SortOrder uint8

const (
	Ascending SortOrder = iota
	Descending
)

// SortState is the user's current sort selection.
type SortState struct {
	Column SortColumn
	Order  SortOrder
}

// Toggle flips the direction when the same column is selected again and
// resets to ascending when a new column is selected.
func (s *SortState) Toggle(column SortColumn) {
	if s.Column == column {
		if s.Order == Ascending {
			s.Order = Descending
		} else {
			s.Order = Ascending
		}
		return
	}
	s.Column = column
	s.Order = Ascending
}

// Project returns the contests ordered by the sort state. It is pure: the
// input slice is never mutated, and identical inputs produce identical
// output. Ties on the sort column always break by ascending normalized name,
// regardless of direction, so equal rows never reorder between renders.
func Project(contests []model.ContestedResource, state SortState) []model.ContestedResource {
	ordered := slices.Clone(contests)
	slices.SortStableFunc(ordered, func(a, b model.ContestedResource) int {
		order := compareColumn(a, b, state.Column)
		if state.Order == Descending {
			order = -order
		}
		if order != 0 {
			return order
		}
		return strings.Compare(a.NormalizedName, b.NormalizedName)
	})
	return ordered
}

// FilterByName returns the contests whose normalized name contains the
// normalized form of query. An empty query matches everything.
func FilterByName(contests []model.ContestedResource, query string) []model.ContestedResource {
	normalized := model.NormalizeName(query)
	if normalized == "" {
		return slices.Clone(contests)
	}
	filtered := make([]model.ContestedResource, 0, len(contests))
	for _, contest := range contests {
		if strings.Contains(contest.NormalizedName, normalized) {
			filtered = append(filtered, contest)
		}
	}
	return filtered
}

func compareColumn(a, b model.ContestedResource, column SortColumn) int {
	switch column {
	case LockedVotes:
		return compareOptional(a.LockedVotes, b.LockedVotes)
	case AbstainVotes:
		return compareOptional(a.AbstainVotes, b.AbstainVotes)
	case EndTime:
		return compareOptional(a.EndTime, b.EndTime)
	case LastUpdated:
		return cmp.Compare(a.LastSynced, b.LastSynced)
	default:
		return strings.Compare(a.NormalizedName, b.NormalizedName)
	}
}

// compareOptional orders not-yet-fetched values before any known value.
func compareOptional[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}
