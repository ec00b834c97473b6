// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"github.com/PastaPastaPasta/dash-evo-tool/model"
	"github.com/PastaPastaPasta/dash-evo-tool/projection"
)

// Intent is one discrete user request forwarded by the UI collaborator. The
// UI never mutates cached state directly; every mutation goes through an
// intent.
type Intent interface {
	isIntent()
}

// RefreshAll requests a synchronization of the full open-contest set.
type RefreshAll struct{}

// CastVote requests one vote submission per identity named by the intent.
type CastVote struct {
	Intent model.VoteIntent
}

// DismissStatus clears the pending status message.
type DismissStatus struct{}

// ToggleSort selects a sort column, flipping direction on reselection.
type ToggleSort struct {
	Column projection.SortColumn
}

func (RefreshAll) isIntent()    {}
func (CastVote) isIntent()      {}
func (DismissStatus) isIntent() {}
func (ToggleSort) isIntent()    {}
