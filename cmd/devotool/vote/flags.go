// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"fmt"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/PastaPastaPasta/dash-evo-tool/config"
	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

const (
	NetworkKey        = "network"
	AddressesKey      = "addresses"
	RequestTimeoutKey = "request-timeout"
	ContestKey        = "contest"
	ChoiceKey         = "choice"
	ContestantKey     = "contestant"
	VotersKey         = "voters"
	PrivateKeysKey    = "private-keys"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(NetworkKey, config.TestnetName, "Network to submit votes on")
	flags.StringSlice(AddressesKey, nil, "Platform endpoints to query, overriding the network defaults")
	flags.Duration(RequestTimeoutKey, config.DefaultRequestTimeout, "Timeout applied to each platform request")
	flags.String(ContestKey, "", "Contested name to vote on (required)")
	flags.String(ChoiceKey, "", "Vote choice: toward, lock, or abstain (required)")
	flags.String(ContestantKey, "", "Contestant identity to vote toward (required when choice is toward)")
	flags.StringSlice(VotersKey, nil, "Voting identities to cast with (required)")
	flags.StringSlice(PrivateKeysKey, nil, "Voting keys matching --voters by position (required)")
}

type Config struct {
	config.Config

	Intent model.VoteIntent
	Keys   map[ids.ID]*secp256k1.PrivateKey
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	network, err := flags.GetString(NetworkKey)
	if err != nil {
		return nil, err
	}

	c, err := config.Default(network)
	if err != nil {
		return nil, err
	}

	addresses, err := flags.GetStringSlice(AddressesKey)
	if err != nil {
		return nil, err
	}
	if len(addresses) > 0 {
		c.Addresses = addresses
	}

	c.RequestTimeout, err = flags.GetDuration(RequestTimeoutKey)
	if err != nil {
		return nil, err
	}

	contest, err := flags.GetString(ContestKey)
	if err != nil {
		return nil, err
	}

	choice, err := parseChoice(flags)
	if err != nil {
		return nil, err
	}

	voterStrs, err := flags.GetStringSlice(VotersKey)
	if err != nil {
		return nil, err
	}
	keyStrs, err := flags.GetStringSlice(PrivateKeysKey)
	if err != nil {
		return nil, err
	}
	if len(voterStrs) != len(keyStrs) {
		return nil, fmt.Errorf("%d voters provided with %d private keys", len(voterStrs), len(keyStrs))
	}

	voters := make([]ids.ID, len(voterStrs))
	keys := make(map[ids.ID]*secp256k1.PrivateKey, len(keyStrs))
	for i, voterStr := range voterStrs {
		voter, err := ids.FromString(voterStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse voter %q: %w", voterStr, err)
		}

		var key secp256k1.PrivateKey
		if err := key.UnmarshalText([]byte(`"` + keyStrs[i] + `"`)); err != nil {
			return nil, fmt.Errorf("failed to parse private key for voter %s: %w", voter, err)
		}

		voters[i] = voter
		keys[voter] = &key
	}

	intent := model.VoteIntent{
		ContestKey: model.NormalizeName(contest),
		Choice:     choice,
		Voters:     voters,
	}
	if err := intent.Verify(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Config{
		Config: c,
		Intent: intent,
		Keys:   keys,
	}, nil
}

func parseChoice(flags *pflag.FlagSet) (model.VoteChoice, error) {
	choiceName, err := flags.GetString(ChoiceKey)
	if err != nil {
		return model.VoteChoice{}, err
	}

	switch choiceName {
	case "lock":
		return model.Lock(), nil
	case "abstain":
		return model.Abstain(), nil
	case "toward":
		contestantStr, err := flags.GetString(ContestantKey)
		if err != nil {
			return model.VoteChoice{}, err
		}
		contestant, err := ids.FromString(contestantStr)
		if err != nil {
			return model.VoteChoice{}, fmt.Errorf("failed to parse contestant %q: %w", contestantStr, err)
		}
		return model.TowardContestant(contestant), nil
	default:
		return model.VoteChoice{}, fmt.Errorf("unknown choice %q", choiceName)
	}
}
