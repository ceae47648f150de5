/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics registers the scheduler's Prometheus collectors: request
// totals, fitness cache hits, decoder invariant violations, and request
// duration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskalign"

var (
	SchedulesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "schedules_total",
			Help:      "Number of Schedule requests handled, labeled by whether the request finished or was cut short.",
		},
		[]string{"outcome"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ga",
			Name:      "fitness_cache_lookups_total",
			Help:      "Genome fitness memoization lookups, labeled by hit or miss.",
		},
		[]string{"result"},
	)

	DecoderInvariantViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "invariant_violations_total",
			Help:      "Decoder commits rejected by the assertion-style invariant guard.",
		},
		[]string{"reason"},
	)

	ScheduleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "schedule_duration_seconds",
			Help:      "Wall-clock time to produce a schedule, labeled by whether it completed or stopped early (cancelled or over its time budget).",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(SchedulesTotal, CacheLookups, DecoderInvariantViolations, ScheduleDuration)
}

// Recorder adapts the package's collectors to the ga.Recorder interface
// without pkg/ga importing Prometheus directly.
type Recorder struct{}

func (Recorder) ObserveGeneration(_ float64, cacheHit bool) {
	if cacheHit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

func (Recorder) ObserveInvariantViolation(reason string) {
	DecoderInvariantViolations.WithLabelValues(reason).Inc()
}
