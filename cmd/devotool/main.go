// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PastaPastaPasta/dash-evo-tool/cmd/devotool/contests"
	"github.com/PastaPastaPasta/dash-evo-tool/cmd/devotool/run"
	"github.com/PastaPastaPasta/dash-evo-tool/cmd/devotool/vote"
)

func main() {
	root := &cobra.Command{
		Use:   "devotool",
		Short: "Contested resource coordinator for Dash Platform",
	}
	root.AddCommand(
		run.Command(),
		contests.Command(),
		vote.Command(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
