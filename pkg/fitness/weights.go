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

// Package fitness scores a decoded schedule and holds the tunable weights
// behind that score.
package fitness

import (
	"github.com/imdario/mergo"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
)

// Weights are the tuning constants in the score formula. Defaults match the
// specification's recommended values.
type Weights struct {
	Unmet float64
	Setup float64
	Tardy float64
	Wait  float64
}

// DefaultWeights are the recommended defaults: heavily penalize unmet
// demand and tardiness, lightly penalize changeovers and waiting.
func DefaultWeights() Weights {
	return Weights{Unmet: 100, Setup: 1, Tardy: 10, Wait: 0.5}
}

// Resolve merges a request's optional weight overrides onto the defaults,
// leaving any unset field at its default value.
func Resolve(override *v1alpha1.Weights) (Weights, error) {
	w := DefaultWeights()
	if override == nil {
		return w, nil
	}
	patch := Weights{}
	if override.Unmet != nil {
		patch.Unmet = *override.Unmet
	}
	if override.Setup != nil {
		patch.Setup = *override.Setup
	}
	if override.Tardy != nil {
		patch.Tardy = *override.Tardy
	}
	if override.Wait != nil {
		patch.Wait = *override.Wait
	}
	// Any field left at its zero value was never overridden; mergo fills it
	// from the default. A request that explicitly overrides a weight to
	// exactly 0 is indistinguishable from "not set" here, a known mergo
	// limitation for value-typed merges.
	if err := mergo.Merge(&patch, w); err != nil {
		return Weights{}, err
	}
	return patch, nil
}
