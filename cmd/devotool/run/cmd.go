// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/PastaPastaPasta/dash-evo-tool/coordinator"
	"github.com/PastaPastaPasta/dash-evo-tool/platform"
	"github.com/PastaPastaPasta/dash-evo-tool/store"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Runs a headless watcher that keeps the contest cache fresh",
		RunE:  runFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	config, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	ctx := c.Context()
	logger := log.NewLogger("devotool")

	client, err := platform.NewClient(config.Addresses, config.RequestTimeout)
	if err != nil {
		return err
	}

	coord, err := coordinator.New(coordinator.Dependencies{
		Log:        logger,
		Store:      store.New(memdb.New(), logger),
		Client:     client,
		Signer:     platform.NewKeychainSigner(),
		StaleAfter: config.StaleAfter,
	})
	if err != nil {
		return err
	}
	defer coord.Close()

	logger.Info("watching contested resources",
		log.String("network", config.Network),
		log.Int("endpoints", len(config.Addresses)),
		log.Duration("interval", config.Interval),
	)

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	for {
		coord.Handle(ctx, coordinator.RefreshAll{})
		coord.Wait()

		state := coord.Snapshot()
		if state.Status != nil {
			logger.Info("refresh finished",
				log.Int("contests", len(state.Contests)),
				log.String("status", state.Status.Text),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
