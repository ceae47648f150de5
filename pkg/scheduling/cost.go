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

package scheduling

// placementCost is the lexicographic key the decoder uses to pick, among
// every machine admitting a component's mold, the one to commit to. Lower
// sorts first on every field in declaration order.
type placementCost struct {
	day            int
	produceStart   float64
	moldChange     bool
	colorChange    bool
	remainingAfter float64
	machineID      string
}

// less implements the tie-break chain from the decoder's cost model:
// earliest (day, start_hour), then no mold change, then no color change,
// then tighter pack (lower remaining capacity), then ascending machine id.
func (c placementCost) less(o placementCost) bool {
	if c.day != o.day {
		return c.day < o.day
	}
	if c.produceStart != o.produceStart {
		return c.produceStart < o.produceStart
	}
	if c.moldChange != o.moldChange {
		return !c.moldChange
	}
	if c.colorChange != o.colorChange {
		return !c.colorChange
	}
	if c.remainingAfter != o.remainingAfter {
		return c.remainingAfter < o.remainingAfter
	}
	return c.machineID < o.machineID
}
