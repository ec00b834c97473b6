// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

// Wire representations for the platform query and submit endpoints.

type apiContestant struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	Votes    uint32 `json:"votes"`
}

type apiContestedResource struct {
	NormalizedName string          `json:"normalizedName"`
	LockedVotes    *uint32         `json:"lockedVotes,omitempty"`
	AbstainVotes   *uint32         `json:"abstainVotes,omitempty"`
	EndTime        *int64          `json:"endTime,omitempty"`
	Contestants    []apiContestant `json:"contestants"`
}

type getContestedResourcesReply struct {
	ContestedResources []apiContestedResource `json:"contestedResources"`
}

type getContestedResourceArgs struct {
	NormalizedName string `json:"normalizedName"`
}

type getContestedResourceReply struct {
	ContestedResource apiContestedResource `json:"contestedResource"`
}

type submitVoteArgs struct {
	Voter          string `json:"voter"`
	NormalizedName string `json:"normalizedName"`
	Choice         string `json:"choice"`
	Contestant     string `json:"contestant,omitempty"`
	Payload        []byte `json:"payload"`
	Signature      []byte `json:"signature"`
}

type submitVoteReply struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

func (r apiContestedResource) contest() (model.ContestedResource, error) {
	contest := model.ContestedResource{
		NormalizedName: r.NormalizedName,
		LockedVotes:    r.LockedVotes,
		AbstainVotes:   r.AbstainVotes,
		EndTime:        r.EndTime,
		Contestants:    make([]model.Contestant, len(r.Contestants)),
	}
	for i, contestant := range r.Contestants {
		identity, err := ids.FromString(contestant.Identity)
		if err != nil {
			return model.ContestedResource{}, fmt.Errorf(
				"%w: contestant identity %q: %s",
				ErrMalformed, contestant.Identity, err,
			)
		}
		contest.Contestants[i] = model.Contestant{
			Identity: identity,
			Name:     contestant.Name,
			Votes:    contestant.Votes,
		}
	}
	if err := contest.Verify(); err != nil {
		return model.ContestedResource{}, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	return contest, nil
}

func choiceWire(choice model.VoteChoice) (kind string, contestant string) {
	switch choice.Kind {
	case model.ChoiceTowardContestant:
		return "towardContestant", choice.Contestant.String()
	case model.ChoiceLock:
		return "lock", ""
	default:
		return "abstain", ""
	}
}
