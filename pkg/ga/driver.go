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

package ga

import (
	"context"
	"strconv"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/domain"
	"github.com/taskalign/scheduler/pkg/fitness"
	"github.com/taskalign/scheduler/pkg/scheduling"
	"github.com/taskalign/scheduler/pkg/taskalignlog"
)

// Recorder receives one ObserveGeneration call per genome evaluation (that
// genome's score and whether it came from the fitness cache) and one
// ObserveInvariantViolation call per decoder guard failure. The GA package never
// imports pkg/metrics directly; the service layer supplies an
// implementation so the driver stays testable without a Prometheus
// registry.
type Recorder interface {
	ObserveGeneration(best float64, cacheHit bool)
	ObserveInvariantViolation(reason string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveGeneration(float64, bool)     {}
func (noopRecorder) ObserveInvariantViolation(string) {}

// Options configures one GA run.
type Options struct {
	PopSize      int
	NGenerations int
	MutationRate float64
	Seed         int64
	Weights      fitness.Weights
	TimeBudget   time.Duration // zero means unbounded
	Recorder     Recorder
}

// Outcome is the best schedule the driver found, and whether it stopped
// early because of a cancelled context or an exhausted time budget.
type Outcome struct {
	Best    Genome
	BestIDs []string
	Result  *scheduling.Result
	Score   float64
	Partial bool
}

// Run executes the generational loop: seed, then repeatedly evaluate,
// select, and breed, stopping after NGenerations complete generations, or
// earlier if ctx is cancelled or the time budget elapses - in which case
// the best genome found so far is returned with Partial set.
func Run(ctx context.Context, catalog *domain.Catalog, opts Options) (*Outcome, error) {
	log := taskalignlog.FromContext(ctx)
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}

	prereqs := buildPrereqIndex(catalog)
	rng := NewRand(opts.Seed)
	pop := seedPopulation(catalog, prereqs, opts.PopSize, rng)

	memo := cache.New(5*time.Minute, 10*time.Minute)

	var deadline time.Time
	if opts.TimeBudget > 0 {
		deadline = time.Now().Add(opts.TimeBudget)
	}

	var bestGenome Genome
	var bestResult *scheduling.Result
	bestScore := 0.0
	haveBest := false
	partial := false

	for gen := 0; gen < opts.NGenerations; gen++ {
		select {
		case <-ctx.Done():
			partial = true
		default:
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			partial = true
		}
		if partial {
			log.V(1).Info("ga: stopping early", "generation", gen, "reason", "cancelled-or-over-budget")
			break
		}

		fitnesses := make([]float64, len(pop))
		results := make([]*scheduling.Result, len(pop))

		eg, egCtx := errgroup.WithContext(ctx)
		for i, genome := range pop {
			i, genome := i, genome
			eg.Go(func() error {
				if egCtx.Err() != nil {
					return nil
				}
				key, hit := lookupMemo(memo, genome)
				if hit {
					fitnesses[i] = key.score
					results[i] = key.result
					opts.Recorder.ObserveGeneration(key.score, true)
					return nil
				}
				ids := genome.IDs(catalog)
				result, err := scheduling.Solve(catalog, ids)
				if err != nil {
					if _, ok := err.(*v1alpha1.InternalError); ok {
						opts.Recorder.ObserveInvariantViolation("decoder_commit")
					}
					return err
				}
				score := fitness.Score(catalog, result, opts.Weights)
				storeMemo(memo, genome, score, result)
				fitnesses[i] = score
				results[i] = result
				opts.Recorder.ObserveGeneration(score, false)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			partial = true
			break
		}

		genBestIdx := 0
		for i, f := range fitnesses {
			if f < fitnesses[genBestIdx] {
				genBestIdx = i
			}
		}
		if !haveBest || fitnesses[genBestIdx] < bestScore {
			bestScore = fitnesses[genBestIdx]
			bestGenome = pop[genBestIdx].clone()
			bestResult = results[genBestIdx]
			haveBest = true
		}

		if gen == opts.NGenerations-1 {
			break
		}
		pop = nextGeneration(pop, fitnesses, prereqs, opts.MutationRate, rng)
	}

	return &Outcome{
		Best:    bestGenome,
		BestIDs: bestGenome.IDs(catalog),
		Result:  bestResult,
		Score:   bestScore,
		Partial: partial,
	}, nil
}

type memoEntry struct {
	score  float64
	result *scheduling.Result
}

func memoKey(g Genome) (uint64, error) {
	return hashstructure.Hash(g, hashstructure.FormatV2, nil)
}

// lookupMemo and storeMemo key the run's genome->fitness cache by an
// order-sensitive hash of the permutation (SlicesAsSets must stay off,
// unlike the teacher's ChangeMonitor: a genome's positions are meaningful,
// not just its membership).
func lookupMemo(memo *cache.Cache, g Genome) (memoEntry, bool) {
	h, err := memoKey(g)
	if err != nil {
		return memoEntry{}, false
	}
	v, ok := memo.Get(keyString(h))
	if !ok {
		return memoEntry{}, false
	}
	return v.(memoEntry), true
}

func storeMemo(memo *cache.Cache, g Genome, score float64, result *scheduling.Result) {
	h, err := memoKey(g)
	if err != nil {
		return
	}
	memo.SetDefault(keyString(h), memoEntry{score: score, result: result})
}

func keyString(h uint64) string {
	return strconv.FormatUint(h, 16)
}
