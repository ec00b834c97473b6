// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contests

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/PastaPastaPasta/dash-evo-tool/config"
	"github.com/PastaPastaPasta/dash-evo-tool/projection"
)

const (
	NetworkKey        = "network"
	AddressesKey      = "addresses"
	RequestTimeoutKey = "request-timeout"
	SortKey           = "sort"
	DescendingKey     = "descending"
	FilterKey         = "filter"
)

var sortColumns = map[string]projection.SortColumn{
	"name":    projection.ContestedName,
	"locked":  projection.LockedVotes,
	"abstain": projection.AbstainVotes,
	"endtime": projection.EndTime,
	"updated": projection.LastUpdated,
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(NetworkKey, config.TestnetName, "Network to query contested resources on")
	flags.StringSlice(AddressesKey, nil, "Platform endpoints to query, overriding the network defaults")
	flags.Duration(RequestTimeoutKey, config.DefaultRequestTimeout, "Timeout applied to each platform request")
	flags.String(SortKey, "name", "Column to sort by: name, locked, abstain, endtime, updated")
	flags.Bool(DescendingKey, false, "Sort in descending order")
	flags.String(FilterKey, "", "Only show contests whose name contains this substring")
}

type Config struct {
	config.Config

	Sort   projection.SortState
	Filter string
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

	sortName, err := flags.GetString(SortKey)
	if err != nil {
		return nil, err
	}
	column, ok := sortColumns[sortName]
	if !ok {
		return nil, fmt.Errorf("unknown sort column %q", sortName)
	}

	descending, err := flags.GetBool(DescendingKey)
	if err != nil {
		return nil, err
	}
	order := projection.Ascending
	if descending {
		order = projection.Descending
	}

	filter, err := flags.GetString(FilterKey)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Config{
		Config: c,
		Sort: projection.SortState{
			Column: column,
			Order:  order,
		},
		Filter: filter,
	}, nil
}
