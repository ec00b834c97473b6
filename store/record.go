// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"github.com/luxfi/ids"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

// contestRecord is the durable form of a contest snapshot. Optional tallies
// are flattened to (present, value) pairs because the codec does not handle
// pointer fields.
type contestRecord struct {
	NormalizedName string `serialize:"true"`

	HasLockedVotes bool   `serialize:"true"`
	LockedVotes    uint32 `serialize:"true"`

	HasAbstainVotes bool   `serialize:"true"`
	AbstainVotes    uint32 `serialize:"true"`

	HasEndTime bool  `serialize:"true"`
	EndTime    int64 `serialize:"true"`

	LastSynced  int64              `serialize:"true"`
	Contestants []contestantRecord `serialize:"true"`
}

type contestantRecord struct {
	Identity ids.ID `serialize:"true"`
	Name     string `serialize:"true"`
	Votes    uint32 `serialize:"true"`
}

type identityRecord struct {
	Identity ids.ID `serialize:"true"`
	Label    string `serialize:"true"`
	Type     uint8  `serialize:"true"`
}

func recordFromContest(contest model.ContestedResource) *contestRecord {
	record := &contestRecord{
		NormalizedName: contest.NormalizedName,
		LastSynced:     contest.LastSynced,
		Contestants:    make([]contestantRecord, len(contest.Contestants)),
	}
	if contest.LockedVotes != nil {
		record.HasLockedVotes = true
		record.LockedVotes = *contest.LockedVotes
	}
	if contest.AbstainVotes != nil {
		record.HasAbstainVotes = true
		record.AbstainVotes = *contest.AbstainVotes
	}
	if contest.EndTime != nil {
		record.HasEndTime = true
		record.EndTime = *contest.EndTime
	}
	for i, contestant := range contest.Contestants {
		record.Contestants[i] = contestantRecord{
			Identity: contestant.Identity,
			Name:     contestant.Name,
			Votes:    contestant.Votes,
		}
	}
	return record
}

func (r *contestRecord) contest() model.ContestedResource {
	contest := model.ContestedResource{
		NormalizedName: r.NormalizedName,
		LastSynced:     r.LastSynced,
		Contestants:    make([]model.Contestant, len(r.Contestants)),
	}
	if r.HasLockedVotes {
		votes := r.LockedVotes
		contest.LockedVotes = &votes
	}
	if r.HasAbstainVotes {
		votes := r.AbstainVotes
		contest.AbstainVotes = &votes
	}
	if r.HasEndTime {
		end := r.EndTime
		contest.EndTime = &end
	}
	for i, contestant := range r.Contestants {
		contest.Contestants[i] = model.Contestant{
			Identity: contestant.Identity,
			Name:     contestant.Name,
			Votes:    contestant.Votes,
		}
	}
	return contest
}

func recordFromIdentity(identity model.VotingIdentity) *identityRecord {
	return &identityRecord{
		Identity: identity.Identity,
		Label:    identity.Label,
		Type:     uint8(identity.Type),
	}
}

func (r *identityRecord) identity() model.VotingIdentity {
	return model.VotingIdentity{
		Identity: r.Identity,
		Label:    r.Label,
		Type:     model.IdentityType(r.Type),
	}
}
