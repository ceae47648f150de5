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

package fitness

import (
	"github.com/samber/lo"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/domain"
	"github.com/taskalign/scheduler/pkg/scheduling"
)

// Score reduces a decoded schedule to the single number the GA optimizes:
// a weighted sum of unmet demand, changeover overhead, tardiness, and wait
// time. Lower is better.
func Score(catalog *domain.Catalog, result *scheduling.Result, w Weights) float64 {
	var unmet float64
	for _, qty := range result.Unmet {
		unmet += float64(qty)
	}

	var changeMolds, changeColors int
	var waitHours float64
	finishDay := map[string]int{}
	producedAny := map[string]bool{}
	for _, a := range result.Assignments {
		switch a.TaskType {
		case v1alpha1.TaskChangeMold:
			changeMolds++
		case v1alpha1.TaskChangeColor:
			changeColors++
		case v1alpha1.TaskWait:
			waitHours += a.UsedHours
		case v1alpha1.TaskProduce:
			producedAny[a.ComponentID] = true
			if d := finishDay[a.ComponentID]; a.Day > d {
				finishDay[a.ComponentID] = a.Day
			}
		}
	}

	setupOverhead := float64(changeMolds)*catalog.MoldChangeTimeHours + float64(changeColors)*catalog.ColorChangeTimeHours
	tardy := tardyPenalty(catalog, result, finishDay, producedAny)

	return w.Unmet*unmet + w.Setup*setupOverhead + w.Tardy*tardy + w.Wait*waitHours
}

// tardyPenalty computes Σ max(0, finish_day(x) - due_day(x)) * quantity(x)
// over every component whose demand was fully met, per spec §4.4. Shared by
// Score and Evaluate so the two never drift on what counts as tardy.
func tardyPenalty(catalog *domain.Catalog, result *scheduling.Result, finishDay map[string]int, producedAny map[string]bool) float64 {
	var tardy float64
	for _, c := range catalog.Components {
		if result.Unmet[c.ID] > 0 {
			continue // unmet demand is penalized by w_unmet, not tardiness.
		}
		if !producedAny[c.ID] {
			continue // nothing produced (zero-quantity edge case): no finish day to be tardy against.
		}
		if late := finishDay[c.ID] - c.DueDay; late > 0 {
			tardy += float64(late) * float64(c.Quantity)
		}
	}
	return tardy
}

// Summary reports the raw counters behind a score.
type Summary struct {
	UnmetTotal    int
	ChangeMolds   int
	ChangeColors  int
	WaitHours     float64
	TardyPenalty  float64
	Score         float64
}

// Evaluate is Score plus the breakdown, used by callers that need both
// (metrics emission, debugging) without scoring twice.
func Evaluate(catalog *domain.Catalog, result *scheduling.Result, w Weights) Summary {
	score := Score(catalog, result, w)
	unmetTotal := lo.SumBy(lo.Values(result.Unmet), func(q int) int { return q })
	changeMolds := lo.CountBy(result.Assignments, func(a v1alpha1.Assignment) bool { return a.TaskType == v1alpha1.TaskChangeMold })
	changeColors := lo.CountBy(result.Assignments, func(a v1alpha1.Assignment) bool { return a.TaskType == v1alpha1.TaskChangeColor })
	var waitHours float64
	finishDay := map[string]int{}
	producedAny := map[string]bool{}
	for _, a := range result.Assignments {
		switch a.TaskType {
		case v1alpha1.TaskWait:
			waitHours += a.UsedHours
		case v1alpha1.TaskProduce:
			producedAny[a.ComponentID] = true
			if d := finishDay[a.ComponentID]; a.Day > d {
				finishDay[a.ComponentID] = a.Day
			}
		}
	}
	return Summary{
		UnmetTotal:   unmetTotal,
		ChangeMolds:  changeMolds,
		ChangeColors: changeColors,
		WaitHours:    waitHours,
		TardyPenalty: tardyPenalty(catalog, result, finishDay, producedAny),
		Score:        score,
	}
}
