// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"fmt"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/PastaPastaPasta/dash-evo-tool/coordinator"
	"github.com/PastaPastaPasta/dash-evo-tool/model"
	"github.com/PastaPastaPasta/dash-evo-tool/platform"
	"github.com/PastaPastaPasta/dash-evo-tool/status"
	"github.com/PastaPastaPasta/dash-evo-tool/store"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "vote",
		Short: "Casts votes on a contested name with one or more identities",
		RunE:  voteFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func voteFunc(c *cobra.Command, args []string) error {
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

	signer := platform.NewKeychainSigner()
	for voter, key := range config.Keys {
		signer.Add(voter, key)
	}

	cache := store.New(memdb.New(), logger)
	coord, err := coordinator.New(coordinator.Dependencies{
		Log:    logger,
		Store:  cache,
		Client: client,
		Signer: signer,
	})
	if err != nil {
		return err
	}
	defer coord.Close()

	// Holding a voting key is what makes an identity eligible here; the
	// platform still has the final say on each submission.
	for _, voter := range config.Intent.Voters {
		err := cache.PutIdentity(model.VotingIdentity{
			Identity: voter,
			Type:     model.IdentityMasternode,
		})
		if err != nil {
			return err
		}
	}

	coord.Handle(ctx, coordinator.CastVote{Intent: config.Intent})
	coord.Wait()

	state := coord.Snapshot()
	if state.Status == nil {
		return fmt.Errorf("no submission outcome for %q", config.Intent.ContestKey)
	}

	fmt.Println(state.Status.Text)
	if state.Status.Severity == status.Error {
		return fmt.Errorf("vote submission failed")
	}
	return nil
}
