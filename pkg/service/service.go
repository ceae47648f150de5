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

// Package service is the scheduler's orchestration entry point: it glues
// the domain validator, the GA driver, the decoder, and the fitness
// evaluator into the single Schedule call every transport (CLI, HTTP)
// drives.
package service

import (
	"context"
	"time"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/domain"
	"github.com/taskalign/scheduler/pkg/fitness"
	"github.com/taskalign/scheduler/pkg/ga"
	"github.com/taskalign/scheduler/pkg/metrics"
	"github.com/taskalign/scheduler/pkg/taskalignlog"
)

const defaultSeed = 1

// Schedule validates a request and runs it through the GA driver, applying
// the tuning constants and optional time budget the caller supplied. It is
// the only exported entry point the CLI and HTTP transports call.
func Schedule(ctx context.Context, req *v1alpha1.Request) (*v1alpha1.Response, error) {
	log := taskalignlog.FromContext(ctx)

	catalog, err := domain.Validate(req)
	if err != nil {
		return nil, err
	}

	if len(catalog.Components) == 0 {
		return &v1alpha1.Response{Assignments: []v1alpha1.Assignment{}, Unmet: map[string]int{}, Score: 0}, nil
	}

	weights, err := fitness.Resolve(req.Weights)
	if err != nil {
		return nil, err
	}

	seed := defaultSeed
	if req.Seed != nil {
		seed = int(*req.Seed)
	}

	var budget time.Duration
	if req.TimeBudgetSeconds != nil {
		budget = time.Duration(*req.TimeBudgetSeconds * float64(time.Second))
	}

	start := time.Now()
	outcome, err := ga.Run(ctx, catalog, ga.Options{
		PopSize:      req.PopSize,
		NGenerations: req.NGenerations,
		MutationRate: req.MutationRate,
		Seed:         int64(seed),
		Weights:      weights,
		TimeBudget:   budget,
		Recorder:     metrics.Recorder{},
	})
	if err != nil {
		return nil, err
	}

	outcomeLabel := "completed"
	if outcome.Partial {
		outcomeLabel = "partial"
	}
	metrics.ScheduleDuration.WithLabelValues(outcomeLabel).Observe(time.Since(start).Seconds())
	metrics.SchedulesTotal.WithLabelValues(outcomeLabel).Inc()

	if outcome.Result == nil {
		log.Info("schedule cancelled before any generation completed")
		return &v1alpha1.Response{Assignments: []v1alpha1.Assignment{}, Unmet: unmetAll(catalog), Score: 0, Partial: true}, nil
	}

	log.V(1).Info("schedule complete", "score", outcome.Score, "partial", outcome.Partial, "assignments", len(outcome.Result.Assignments))

	return &v1alpha1.Response{
		Assignments: outcome.Result.Assignments,
		Unmet:       outcome.Result.Unmet,
		Score:       outcome.Score,
		Partial:     outcome.Partial,
	}, nil
}

func unmetAll(catalog *domain.Catalog) map[string]int {
	out := make(map[string]int, len(catalog.Components))
	for _, c := range catalog.Components {
		out[c.ID] = c.Quantity
	}
	return out
}
