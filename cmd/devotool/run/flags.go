// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/PastaPastaPasta/dash-evo-tool/config"
)

const (
	NetworkKey        = "network"
	AddressesKey      = "addresses"
	RequestTimeoutKey = "request-timeout"
	StaleAfterKey     = "stale-after"
	IntervalKey       = "interval"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(NetworkKey, config.TestnetName, "Network to track contested resources on")
	flags.StringSlice(AddressesKey, nil, "Platform endpoints to query, overriding the network defaults")
	flags.Duration(RequestTimeoutKey, config.DefaultRequestTimeout, "Timeout applied to each platform request")
	flags.Duration(StaleAfterKey, config.DefaultStaleAfter, "Age after which a cached contest is considered stale")
	flags.Duration(IntervalKey, time.Minute, "How often to refresh the contested resource set")
}

type Config struct {
	config.Config

	Interval time.Duration
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

	c.StaleAfter, err = flags.GetDuration(StaleAfterKey)
	if err != nil {
		return nil, err
	}

	interval, err := flags.GetDuration(IntervalKey)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Config{
		Config:   c,
		Interval: interval,
	}, nil
}
