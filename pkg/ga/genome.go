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

import "github.com/taskalign/scheduler/pkg/domain"

// Genome is a permutation of indices into the catalog's topological order -
// integer indices rather than string ids, so crossover and repair stay
// allocation-light.
type Genome []int

// IDs resolves a genome back to component ids for the decoder.
func (g Genome) IDs(catalog *domain.Catalog) []string {
	ids := make([]string, len(g))
	for i, idx := range g {
		ids[i] = catalog.TopoOrder[idx]
	}
	return ids
}

func (g Genome) clone() Genome {
	cp := make(Genome, len(g))
	copy(cp, g)
	return cp
}

// prereqIndex maps a genome index to the genome indices of its direct
// prerequisites, built once per catalog and shared read-only across the
// run.
type prereqIndex [][]int

func buildPrereqIndex(catalog *domain.Catalog) prereqIndex {
	pos := make(map[string]int, len(catalog.TopoOrder))
	for i, id := range catalog.TopoOrder {
		pos[id] = i
	}
	idx := make(prereqIndex, len(catalog.TopoOrder))
	for i, id := range catalog.TopoOrder {
		prereqs := catalog.Prerequisites[id]
		row := make([]int, 0, len(prereqs))
		for _, p := range prereqs {
			row = append(row, pos[p])
		}
		idx[i] = row
	}
	return idx
}

// repair walks g left to right; whenever the component at a position still
// has a prerequisite that hasn't appeared yet, it swaps that prerequisite
// forward from its later occurrence until every prefix is topologically
// valid. Runs after crossover and after mutation.
func repair(g Genome, prereqs prereqIndex) {
	n := len(g)
	pos := make([]int, n)
	for i, v := range g {
		pos[v] = i
	}
	placed := make([]bool, n)

	for i := 0; i < n; i++ {
		for {
			comp := g[i]
			missing := -1
			for _, p := range prereqs[comp] {
				if !placed[p] {
					missing = p
					break
				}
			}
			if missing == -1 {
				break
			}
			j := pos[missing]
			g[i], g[j] = g[j], g[i]
			pos[g[i]], pos[g[j]] = i, j
		}
		placed[g[i]] = true
	}
}

// orderCrossover implements OX: the slice [a,b) copies verbatim from
// parent1 into the child; remaining positions fill with parent2's order,
// skipping ids already present.
func orderCrossover(parent1, parent2 Genome, a, b int) Genome {
	n := len(parent1)
	child := make(Genome, n)
	taken := make([]bool, n)
	for i := a; i < b; i++ {
		child[i] = parent1[i]
		taken[parent1[i]] = true
	}
	pos := 0
	for i := 0; i < n; i++ {
		if pos == a {
			pos = b
		}
		v := parent2[i]
		if taken[v] {
			continue
		}
		child[pos] = v
		taken[v] = true
		pos++
	}
	return child
}
