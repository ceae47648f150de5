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

// Package scheduling holds the decoder: the deterministic, constraint-aware
// simulation that turns one genome (a permutation of component ids) into a
// concrete per-machine timeline.
package scheduling

import v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"

// machineState is the per-machine cursor the decoder advances as it commits
// work. It holds no slices or pointers so it can be copied by value when the
// decoder needs to project a candidate placement without mutating the real
// state.
type machineState struct {
	day               int
	usedHoursToday    float64
	currentMoldID     string
	currentColor      string
	nextSequenceInDay int
}

func newMachineState() *machineState {
	return &machineState{day: 1, nextSequenceInDay: 1}
}

func (s *machineState) clone() machineState {
	return *s
}

func capacityOf(m v1alpha1.Machine) float64 {
	return m.Capacity()
}
