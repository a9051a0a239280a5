// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package launchpad

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "operations_total",
				Help:      "Number of launchpad operations by result",
			},
			[]string{"op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "launchpad",
				Name:      "operation_duration_seconds",
				Help:      "Time spent running launchpad operations",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"op"},
		),
	}

	return m, errors.Join(
		registerer.Register(m.operations),
		registerer.Register(m.duration),
	)
}

func (m *metrics) observe(op string, start time.Time, err error) {
	result := resultAccepted
	if err != nil {
		result = resultRejected
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
