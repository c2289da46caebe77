// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import "github.com/prometheus/client_golang/prometheus"

// Result label values for the finished jobs counter.
const (
	resultOK        = "ok"
	resultError     = "error"
	resultCancelled = "cancelled"
)

type metrics struct {
	submitted prometheus.Counter
	finished  *prometheus.CounterVec
	running   prometheus.Gauge
	queued    prometheus.Gauge
	duration  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asynchttp",
			Subsystem: "pool",
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs accepted by the pool.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asynchttp",
			Subsystem: "pool",
			Name:      "jobs_finished_total",
			Help:      "Total number of jobs that left the pool, by result.",
		}, []string{"result"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "asynchttp",
			Subsystem: "pool",
			Name:      "jobs_running",
			Help:      "Number of jobs currently running.",
		}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "asynchttp",
			Subsystem: "pool",
			Name:      "queue_length",
			Help:      "Number of jobs waiting for a worker.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "asynchttp",
			Subsystem: "pool",
			Name:      "job_duration_seconds",
			Help:      "Time spent running each job, in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	// Pre-initialize label combinations so they are exported with value
	// 0 before the first job finishes.
	m.finished.WithLabelValues(resultOK)
	m.finished.WithLabelValues(resultError)
	m.finished.WithLabelValues(resultCancelled)

	if reg != nil {
		reg.MustRegister(m.submitted, m.finished, m.running, m.queued, m.duration)
	}
	return m
}
