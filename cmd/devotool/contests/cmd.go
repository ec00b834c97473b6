// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contests

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"

	"github.com/PastaPastaPasta/dash-evo-tool/platform"
	"github.com/PastaPastaPasta/dash-evo-tool/projection"
	"github.com/PastaPastaPasta/dash-evo-tool/refresh"
	"github.com/PastaPastaPasta/dash-evo-tool/store"
	"github.com/PastaPastaPasta/dash-evo-tool/utils/timer/mockable"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "contests",
		Short: "Fetches and prints the active contested resources",
		RunE:  contestsFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func contestsFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	config, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	ctx := c.Context()
	logger := log.NewNoOpLogger()

	client, err := platform.NewClient(config.Addresses, config.RequestTimeout)
	if err != nil {
		return err
	}

	cache := store.New(memdb.New(), logger)
	defer cache.Close()

	synchronizer, err := refresh.New(
		logger,
		client,
		cache,
		&mockable.Clock{},
		config.StaleAfter,
		metric.NewRegistry(),
	)
	if err != nil {
		return err
	}

	if err := synchronizer.RefreshAll(ctx); err != nil {
		return fmt.Errorf("failed to refresh contests: %w", err)
	}

	contests, err := cache.GetContests()
	if err != nil {
		return err
	}
	if config.Filter != "" {
		contests = projection.FilterByName(contests, config.Filter)
	}
	contests = projection.Project(contests, config.Sort)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTESTANTS\tLOCKED\tABSTAIN\tENDS")
	for _, contest := range contests {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			contest.NormalizedName,
			len(contest.Contestants),
			formatTally(contest.LockedVotes),
			formatTally(contest.AbstainVotes),
			formatEndTime(contest.EndTime),
		)
	}
	return w.Flush()
}

func formatTally(tally *uint32) string {
	if tally == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *tally)
}

func formatEndTime(endTime *int64) string {
	if endTime == nil {
		return "-"
	}
	return time.UnixMilli(*endTime).UTC().Format(time.RFC3339)
}
