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

// Package domain holds the normalized, validated view of a scheduling
// request: typed entities plus the lookup tables and topological ordering
// the decoder and GA driver both depend on.
package domain

import (
	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
)

// Catalog is the normalized, referentially-checked view of a request. It is
// built once by Validate and is immutable for the remainder of the request,
// per the specification's "domain entities are immutable within a single
// schedule request" lifecycle rule.
type Catalog struct {
	MonthDays            int
	MoldChangeTimeHours  float64
	ColorChangeTimeHours float64

	Machines   []v1alpha1.Machine
	Molds      []v1alpha1.Mold
	Components []v1alpha1.Component

	MachineByID map[string]v1alpha1.Machine
	MoldByID    map[string]v1alpha1.Mold
	ComponentByID map[string]v1alpha1.Component

	// AdmittingMachines maps a mold id to the machines that admit it,
	// sorted by (ascending tonnage, ascending id).
	AdmittingMachines map[string][]v1alpha1.Machine

	// TopoOrder is a topological ordering of component ids (Kahn's
	// algorithm; ties broken by ascending due_day, then ascending id).
	TopoOrder []string

	// Levels maps a component id to its topological level (leaves are 0).
	Levels map[string]int

	// Prerequisites maps a component id to the set of component ids it
	// directly depends on.
	Prerequisites map[string][]string

	// Dependents is the reverse of Prerequisites: component id -> ids
	// that directly list it as a prerequisite.
	Dependents map[string][]string
}

// ComponentIndex returns the position of a component id within TopoOrder,
// used by the GA to build an integer-indexed genome representation.
func (c *Catalog) ComponentIndex() map[string]int {
	idx := make(map[string]int, len(c.TopoOrder))
	for i, id := range c.TopoOrder {
		idx[id] = i
	}
	return idx
}
