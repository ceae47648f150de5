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
	"github.com/taskalign/scheduler/pkg/domain"
)

// seedPopulation builds the initial generation: the first half uses the
// topological-biased shuffle (domain.LevelOrderShuffle) so early genomes
// already respect prerequisite order, the second half is uniform random
// permutations repaired into validity, per the specification's seeding
// rule.
func seedPopulation(catalog *domain.Catalog, prereqs prereqIndex, size int, rng *Rand) []Genome {
	idOf := catalog.ComponentIndex()
	pop := make([]Genome, size)
	biased := size / 2
	for i := 0; i < biased; i++ {
		ids := domain.LevelOrderShuffle(catalog, rng.ShuffleStrings)
		g := make(Genome, len(ids))
		for j, id := range ids {
			g[j] = idOf[id]
		}
		pop[i] = g
	}
	for i := biased; i < size; i++ {
		g := Genome(rng.Perm(len(catalog.TopoOrder)))
		repair(g, prereqs)
		pop[i] = g
	}
	return pop
}

// tournamentSelect runs a binary tournament with replacement: two genomes
// are drawn uniformly at random and the fitter of the pair wins.
func tournamentSelect(pop []Genome, fitness []float64, rng *Rand) Genome {
	a := rng.IntN(len(pop))
	b := rng.IntN(len(pop))
	if fitness[a] <= fitness[b] {
		return pop[a]
	}
	return pop[b]
}

// nextGeneration produces one full generation from the previous one: the
// elite genome carries over unchanged, every other child comes from
// tournament-selected parents, order crossover, and probabilistic swap
// mutation, each followed by repair.
func nextGeneration(pop []Genome, fitness []float64, prereqs prereqIndex, mutationRate float64, rng *Rand) []Genome {
	n := len(pop)
	next := make([]Genome, n)
	eliteIdx := 0
	for i, f := range fitness {
		if f < fitness[eliteIdx] {
			eliteIdx = i
		}
	}
	next[0] = pop[eliteIdx].clone()

	for i := 1; i < n; i++ {
		p1 := tournamentSelect(pop, fitness, rng)
		p2 := tournamentSelect(pop, fitness, rng)
		a, b := cutPoints(len(p1), rng)
		child := orderCrossover(p1, p2, a, b)
		if rng.Float64() < mutationRate {
			swapMutate(child, rng)
		}
		repair(child, prereqs)
		next[i] = child
	}
	return next
}

func cutPoints(n int, rng *Rand) (int, int) {
	if n < 2 {
		return 0, n
	}
	a := rng.IntN(n)
	b := rng.IntN(n)
	if a > b {
		a, b = b, a
	}
	if a == b {
		b = a + 1
	}
	return a, b
}

func swapMutate(g Genome, rng *Rand) {
	if len(g) < 2 {
		return
	}
	i := rng.IntN(len(g))
	j := rng.IntN(len(g))
	g[i], g[j] = g[j], g[i]
}
