// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package voting

import (
	"errors"

	"github.com/luxfi/metric"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

const outcomeLabel = "outcome"

var outcomeLabels = []string{outcomeLabel}

type voteMetrics struct {
	submissions metric.CounterVec
	retries     metric.Counter
}

func newVoteMetrics(registerer metric.Registerer) (*voteMetrics, error) {
	m := &voteMetrics{
		submissions: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "vote_submissions",
				Help: "Total number of per-identity vote submissions by outcome",
			},
			outcomeLabels,
		),
		retries: metric.NewCounter(metric.CounterOpts{
			Name: "vote_submission_retries",
			Help: "Total number of transient-failure retries across all submissions",
		}),
	}

	err := errors.Join(
		registerer.Register(metric.AsCollector(m.submissions)),
		registerer.Register(metric.AsCollector(m.retries)),
	)
	return m, err
}

func (m *voteMetrics) observe(outcome model.SubmissionOutcome) {
	m.submissions.With(metric.Labels{
		outcomeLabel: outcome.Status.String(),
	}).Inc()
	if outcome.Attempts > 1 {
		m.retries.Add(float64(outcome.Attempts - 1))
	}
}
