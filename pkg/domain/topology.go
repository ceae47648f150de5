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

package domain

import (
	"sort"

	"github.com/samber/lo"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
)

// buildPrereqGraph derives the forward (component -> its prerequisites) and
// reverse (component -> its dependents) adjacency used by topoSort and
// later by the decoder's prerequisite gate.
func buildPrereqGraph(components []v1alpha1.Component) (prereqs, dependents map[string][]string) {
	prereqs = make(map[string][]string, len(components))
	dependents = make(map[string][]string, len(components))
	for _, c := range components {
		prereqs[c.ID] = append([]string{}, c.Prerequisites...)
		if _, ok := dependents[c.ID]; !ok {
			dependents[c.ID] = nil
		}
	}
	for _, c := range components {
		for _, p := range c.Prerequisites {
			dependents[p] = append(dependents[p], c.ID)
		}
	}
	return prereqs, dependents
}

// topoSort computes a topological ordering via Kahn's algorithm and the
// per-component topological level (max level of prerequisites + 1, leaves
// at level 0). Ties at each step are broken by ascending due_day then
// ascending id. A non-empty remainder after the algorithm drains its ready
// queue indicates a cycle.
func topoSort(components []v1alpha1.Component, prereqs map[string][]string) ([]string, map[string]int, error) {
	byID := lo.SliceToMap(components, func(c v1alpha1.Component) (string, v1alpha1.Component) { return c.ID, c })
	inDegree := make(map[string]int, len(components))
	dependents := make(map[string][]string, len(components))
	for id := range byID {
		inDegree[id] = 0
	}
	for id, ps := range prereqs {
		inDegree[id] = len(ps)
		for _, p := range ps {
			dependents[p] = append(dependents[p], id)
		}
	}

	ready := make([]string, 0, len(components))
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sortByDueDayThenID(ready, byID)

	order := make([]string, 0, len(components))
	levels := make(map[string]int, len(components))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		level := 0
		for _, p := range prereqs[id] {
			if levels[p]+1 > level {
				level = levels[p] + 1
			}
		}
		levels[id] = level

		var newlyReady []string
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				newlyReady = append(newlyReady, dep)
			}
		}
		sortByDueDayThenID(newlyReady, byID)
		ready = mergeSorted(ready, newlyReady, byID)
	}

	if len(order) != len(components) {
		cyc := firstCycleMember(components, order)
		return nil, nil, v1alpha1.NewValidationError("prerequisite graph contains a cycle involving component %q", cyc)
	}
	return order, levels, nil
}

func sortByDueDayThenID(ids []string, byID map[string]v1alpha1.Component) {
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := byID[ids[i]], byID[ids[j]]
		if ci.DueDay != cj.DueDay {
			return ci.DueDay < cj.DueDay
		}
		return ci.ID < cj.ID
	})
}

// mergeSorted inserts newlyReady (already sorted) into ready while
// preserving overall (due_day, id) order.
func mergeSorted(ready, newlyReady []string, byID map[string]v1alpha1.Component) []string {
	if len(newlyReady) == 0 {
		return ready
	}
	merged := append(append([]string{}, ready...), newlyReady...)
	sortByDueDayThenID(merged, byID)
	return merged
}

// firstCycleMember identifies, deterministically, the lowest-id component
// that Kahn's algorithm never resolved - the id reported in the cyclic
// prerequisite validation error.
func firstCycleMember(components []v1alpha1.Component, resolved []string) string {
	resolvedSet := lo.SliceToMap(resolved, func(id string) (string, bool) { return id, true })
	ids := lo.Map(components, func(c v1alpha1.Component, _ int) string { return c.ID })
	sort.Strings(ids)
	for _, id := range ids {
		if !resolvedSet[id] {
			return id
		}
	}
	return ""
}

// LevelOrderShuffle returns a permutation of all component ids ordered by
// ascending topological level, with ids inside the same level shuffled by
// rng - the "bias-preserving shuffle" the specification uses to seed the
// GA's initial population without ever placing a higher-level component
// before one of its own prerequisites.
func LevelOrderShuffle(catalog *Catalog, shuffle func([]string)) []string {
	maxLevel := 0
	for _, l := range catalog.Levels {
		if l > maxLevel {
			maxLevel = l
		}
	}
	byLevel := make([][]string, maxLevel+1)
	for _, id := range catalog.TopoOrder {
		l := catalog.Levels[id]
		byLevel[l] = append(byLevel[l], id)
	}
	out := make([]string, 0, len(catalog.TopoOrder))
	for _, bucket := range byLevel {
		cp := append([]string{}, bucket...)
		shuffle(cp)
		out = append(out, cp...)
	}
	return out
}
