// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

var _ Signer = (*KeychainSigner)(nil)

// SignedVote is one vote transaction ready for submission.
type SignedVote struct {
	Voter      ids.ID
	ContestKey string
	Choice     model.VoteChoice
	Payload    []byte
	Signature  []byte
}

// Signer produces signed vote transactions for locally held identities. Key
// storage and derivation live behind this interface.
type Signer interface {
	SignVote(voter ids.ID, contestKey string, choice model.VoteChoice) (SignedVote, error)
}

// votePayload is the canonical unsigned form of a vote. The payload bytes
// are hashed and signed, and travel with the submission so the platform can
// verify them.
type votePayload struct {
	Voter      ids.ID `serialize:"true"`
	ContestKey string `serialize:"true"`
	ChoiceKind uint8  `serialize:"true"`
	Contestant ids.ID `serialize:"true"`
}

// KeychainSigner signs votes with locally held voting keys.
type KeychainSigner struct {
	keys map[ids.ID]*secp256k1.PrivateKey
}

func NewKeychainSigner() *KeychainSigner {
	return &KeychainSigner{
		keys: make(map[ids.ID]*secp256k1.PrivateKey),
	}
}

// Add registers the voting key for an identity, replacing any previous key.
func (s *KeychainSigner) Add(voter ids.ID, key *secp256k1.PrivateKey) {
	s.keys[voter] = key
}

func (s *KeychainSigner) SignVote(voter ids.ID, contestKey string, choice model.VoteChoice) (SignedVote, error) {
	key, ok := s.keys[voter]
	if !ok {
		return SignedVote{}, fmt.Errorf("%w: %s", ErrKeyUnavailable, voter)
	}

	payload, err := Codec.Marshal(CodecVersion, &votePayload{
		Voter:      voter,
		ContestKey: contestKey,
		ChoiceKind: uint8(choice.Kind),
		Contestant: choice.Contestant,
	})
	if err != nil {
		return SignedVote{}, fmt.Errorf("failed to serialize vote payload: %w", err)
	}

	signature, err := key.SignHash(hash.ComputeHash256(payload))
	if err != nil {
		return SignedVote{}, fmt.Errorf("failed to sign vote for %s: %w", voter, err)
	}

	return SignedVote{
		Voter:      voter,
		ContestKey: contestKey,
		Choice:     choice,
		Payload:    payload,
		Signature:  signature,
	}, nil
}
