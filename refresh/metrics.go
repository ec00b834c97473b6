// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package refresh

import (
	"errors"

	"github.com/luxfi/metric"
)

type syncMetrics struct {
	refreshes      metric.Counter
	failures       metric.Counter
	coalesced      metric.Counter
	contestsCached metric.Gauge
}

func newSyncMetrics(registerer metric.Registerer) (*syncMetrics, error) {
	m := &syncMetrics{
		refreshes: metric.NewCounter(metric.CounterOpts{
			Name: "contest_refreshes",
			Help: "Total number of contest snapshots successfully synchronized",
		}),
		failures: metric.NewCounter(metric.CounterOpts{
			Name: "contest_refresh_failures",
			Help: "Total number of contest refreshes that failed",
		}),
		coalesced: metric.NewCounter(metric.CounterOpts{
			Name: "contest_refreshes_coalesced",
			Help: "Total number of refresh calls served by an already in-flight query",
		}),
		contestsCached: metric.NewGauge(metric.GaugeOpts{
			Name: "contests_cached",
			Help: "Number of open contests currently cached",
		}),
	}

	err := errors.Join(
		registerer.Register(metric.AsCollector(m.refreshes)),
		registerer.Register(metric.AsCollector(m.failures)),
		registerer.Register(metric.AsCollector(m.coalesced)),
		registerer.Register(metric.AsCollector(m.contestsCached)),
	)
	return m, err
}
