// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package model

import "github.com/luxfi/ids"

// IdentityType classifies what a locally held identity is allowed to do.
type IdentityType uint8

const (
	// IdentityUser can register new contested names but cannot vote.
	IdentityUser IdentityType = iota
	// IdentityMasternode can vote on contests.
	IdentityMasternode
	// IdentityEvonode can vote on contests.
	IdentityEvonode
)

func (t IdentityType) String() string {
	switch t {
	case IdentityUser:
		return "user"
	case IdentityMasternode:
		return "masternode"
	case IdentityEvonode:
		return "evonode"
	default:
		return "unknown"
	}
}

// CanVote reports whether identities of this type are eligible to cast votes
// on contested resources.
func (t IdentityType) CanVote() bool {
	return t == IdentityMasternode || t == IdentityEvonode
}

// CanRegister reports whether identities of this type are eligible to
// register new contested names. This is a disjoint eligibility class from
// voting.
func (t IdentityType) CanRegister() bool {
	return t == IdentityUser
}

// VotingIdentity is a locally held platform identity.
type VotingIdentity struct {
	Identity ids.ID
	Label    string
	Type     IdentityType
}

// DisplayLabel returns the label if one is set, otherwise a shortened form of
// the identity identifier.
func (v VotingIdentity) DisplayLabel() string {
	if v.Label != "" {
		return v.Label
	}
	full := v.Identity.String()
	if len(full) <= 10 {
		return full
	}
	return full[:6] + ".." + full[len(full)-4:]
}
