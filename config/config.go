// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	MainnetName = "mainnet"
	TestnetName = "testnet"

	// DefaultRequestTimeout bounds both connecting to and waiting on a
	// platform endpoint.
	DefaultRequestTimeout = 10 * time.Second

	DefaultStaleAfter = 5 * time.Minute
)

var (
	errUnknownNetwork = errors.New("unknown network")
	errNoAddresses    = errors.New("no platform addresses configured")

	defaultAddresses = map[string][]string{
		MainnetName: {
			"https://dapi-1.mainnet.networks.dash.org",
			"https://dapi-2.mainnet.networks.dash.org",
			"https://dapi-3.mainnet.networks.dash.org",
		},
		TestnetName: {
			"https://dapi-1.testnet.networks.dash.org",
			"https://dapi-2.testnet.networks.dash.org",
		},
	}
)

// Config carries everything the coordinator needs to talk to one network.
type Config struct {
	Network string

	// Addresses are the platform endpoints, tried round-robin. Failing
	// endpoints are not banned; they stay in rotation.
	Addresses []string

	RequestTimeout time.Duration

	// StaleAfter is how old a cached snapshot may grow before it is
	// surfaced as stale.
	StaleAfter time.Duration

	// DataDir holds the local cache database. Empty means in-memory.
	DataDir string
}

// Default returns the stock configuration for a named network.
func Default(network string) (Config, error) {
	addresses, ok := defaultAddresses[network]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", errUnknownNetwork, network)
	}
	return Config{
		Network:        network,
		Addresses:      addresses,
		RequestTimeout: DefaultRequestTimeout,
		StaleAfter:     DefaultStaleAfter,
	}, nil
}

func (c *Config) Validate() error {
	if c.Network != MainnetName && c.Network != TestnetName {
		return fmt.Errorf("%w: %q", errUnknownNetwork, c.Network)
	}
	if len(c.Addresses) == 0 {
		return errNoAddresses
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	return nil
}
