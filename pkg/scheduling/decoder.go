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

import (
	"math"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/domain"
)

const epsilon = 1e-6

// Result is the decoder's output for one genome: the concrete timeline plus
// any residual demand the month could not absorb.
type Result struct {
	Assignments []v1alpha1.Assignment
	Unmet       map[string]int
}

// taskDraft is one timeline atom a plan intends to emit, in commit order.
type taskDraft struct {
	taskType            v1alpha1.TaskType
	start, end, used     float64
	fromMold, toMold     string
	fromColor, toColor   string
	componentID          string
	qty                  int
}

// plan is the tentative outcome of projecting one component onto one
// candidate machine: either a concrete placement with its cost, or a
// not-placed outcome pushed to the back of every comparison.
type plan struct {
	machineID string
	placed    bool
	day       int
	tasks     []taskDraft
	qty       int
	endState  machineState
	cost      placementCost
}

// decoderState is the mutable simulation the Solve loop threads through the
// genome: one machineState per machine plus the demand/prerequisite
// bookkeeping shared across machines.
type decoderState struct {
	catalog *domain.Catalog

	states map[string]*machineState

	remaining       map[string]int
	producedToDate  map[string]int
	firstProduceDay map[string]int
	finishDay       map[string]int
	finishHour      map[string]float64

	moldBusy *moldBusyStore

	assignments []v1alpha1.Assignment
}

// Solve decodes one genome (a permutation of component ids) into a concrete
// schedule. The decoder is purely deterministic: it takes no randomness of
// its own, per the driver/decoder split the specification mandates.
func Solve(catalog *domain.Catalog, genome []string) (*Result, error) {
	d := &decoderState{
		catalog:         catalog,
		states:          map[string]*machineState{},
		remaining:       map[string]int{},
		producedToDate:  map[string]int{},
		firstProduceDay: map[string]int{},
		finishDay:       map[string]int{},
		finishHour:      map[string]float64{},
		moldBusy:        newMoldBusyStore(),
	}
	for _, m := range catalog.Machines {
		d.states[m.ID] = newMachineState()
	}
	for _, c := range catalog.Components {
		d.remaining[c.ID] = c.Quantity
	}

	for _, id := range genome {
		if d.remaining[id] == 0 {
			continue
		}
		if err := d.placeComponent(catalog.ComponentByID[id]); err != nil {
			return nil, err
		}
	}

	unmet := map[string]int{}
	for id, qty := range d.remaining {
		if qty > 0 {
			unmet[id] = qty
		}
	}
	return &Result{Assignments: d.assignments, Unmet: unmet}, nil
}

func (d *decoderState) placeComponent(comp v1alpha1.Component) error {
	candidates := d.catalog.AdmittingMachines[comp.MoldID]
	if len(candidates) == 0 {
		return v1alpha1.NewInfeasibleInputError("component %q's mold %q admits no machine in the fleet", comp.ID, comp.MoldID)
	}

	gateDay, gateHour := d.computeGate(comp)

	var best *plan
	for _, m := range candidates {
		p := d.project(m, comp, gateDay, gateHour)
		if best == nil || (p.placed && !best.placed) || (p.placed && best.placed && p.cost.less(best.cost)) {
			best = p
		}
	}
	if best == nil || !best.placed {
		return nil // remains fully or partially unmet; recorded at Solve's end.
	}
	if err := d.commit(comp, best); err != nil {
		return err
	}

	// Step E: a single day rarely absorbs the whole quantity. Keep producing
	// on the machine already committed to until the component is fully
	// produced or the month runs out; the rest of the permutation is only
	// consulted once this component is settled.
	m := d.catalog.MachineByID[best.machineID]
	for d.remaining[comp.ID] > 0 {
		st := d.states[m.ID]
		next := d.project(m, comp, st.day, 0)
		if !next.placed {
			break // month exhausted; residual recorded as unmet at Solve's end.
		}
		if err := d.commit(comp, next); err != nil {
			return err
		}
	}
	return nil
}

// computeGate derives the earliest (day, hour) at which every prerequisite
// of comp has fully completed, per the decoder's Step A. A prerequisite
// that can never complete (permanently unmet) pushes the gate beyond the
// month, which in turn leaves comp itself unmet.
func (d *decoderState) computeGate(comp v1alpha1.Component) (int, float64) {
	gateDay, gateHour := 1, 0.0
	for _, p := range d.catalog.Prerequisites[comp.ID] {
		if d.remaining[p] > 0 {
			gateDay, gateHour = d.catalog.MonthDays+1, 0
			continue
		}
		pd, ph := d.finishDay[p], d.finishHour[p]
		if pd > gateDay || (pd == gateDay && ph > gateHour) {
			gateDay, gateHour = pd, ph
		}
	}
	return gateDay, gateHour
}

// project simulates placing comp on machine m without mutating decoder
// state, returning the resulting plan and its lexicographic cost. Candidate
// machines are compared by calling project once per machine and keeping the
// lowest-cost plan.
func (d *decoderState) project(m v1alpha1.Machine, comp v1alpha1.Component, gateDay int, gateHour float64) *plan {
	st := d.states[m.ID].clone()
	capHours := capacityOf(m)
	pieceHours := comp.CycleTimeSec / 3600.0

	day := st.day
	if gateDay > day {
		day = gateDay
	}

	for {
		if day > d.catalog.MonthDays {
			return &plan{machineID: m.ID, placed: false, cost: unplacedCost(d.catalog.MonthDays, m.ID)}
		}

		usedToday := 0.0
		if day == st.day {
			usedToday = st.usedHoursToday
		}
		needMold := st.currentMoldID != comp.MoldID
		needColor := st.currentColor != comp.Color

		colorHours := 0.0
		if needColor {
			colorHours = d.catalog.ColorChangeTimeHours
		}
		moldHours := 0.0
		if needMold {
			moldHours = d.catalog.MoldChangeTimeHours
		}
		waitHours := 0.0
		if day == gateDay {
			setupEnd := usedToday + colorHours + moldHours
			if setupEnd < gateHour {
				waitHours = gateHour - setupEnd
			}
		}

		if capHours-usedToday < colorHours+moldHours+waitHours+pieceHours-epsilon {
			day++
			continue
		}

		naturalMoldStart := usedToday + colorHours
		moldBlockLen := moldHours + waitHours + pieceHours
		moldStart, ok := d.moldBusy.firstFreeStart(comp.MoldID, day, naturalMoldStart, capHours, moldBlockLen)
		if !ok {
			day++
			continue
		}
		delta := moldStart - naturalMoldStart

		colorStart := usedToday + delta
		moldChangeStart := colorStart + colorHours
		waitStart := moldChangeStart + moldHours
		produceStart := waitStart + waitHours

		ceiling := capHours
		if next, ok := d.moldBusy.nextBusyAfter(comp.MoldID, day, produceStart); ok && next < ceiling {
			ceiling = next
		}
		room := ceiling - produceStart
		q := int(math.Floor(room/pieceHours + 1e-9))
		if q > d.remaining[comp.ID] {
			q = d.remaining[comp.ID]
		}
		if q <= 0 {
			day++
			continue
		}
		produceEnd := produceStart + float64(q)*pieceHours

		var tasks []taskDraft
		if needColor {
			tasks = append(tasks, taskDraft{taskType: v1alpha1.TaskChangeColor, start: colorStart, end: colorStart + colorHours, used: colorHours, fromColor: orNone(st.currentColor), toColor: comp.Color})
		}
		if needMold {
			tasks = append(tasks, taskDraft{taskType: v1alpha1.TaskChangeMold, start: moldChangeStart, end: moldChangeStart + moldHours, used: moldHours, fromMold: orNone(st.currentMoldID), toMold: comp.MoldID})
		}
		if waitHours > epsilon {
			tasks = append(tasks, taskDraft{taskType: v1alpha1.TaskWait, start: waitStart, end: waitStart + waitHours, used: waitHours})
		}
		tasks = append(tasks, taskDraft{taskType: v1alpha1.TaskProduce, start: produceStart, end: produceEnd, used: produceEnd - produceStart, componentID: comp.ID, qty: q})

		end := st.clone()
		end.day = day
		end.usedHoursToday = produceEnd
		end.currentMoldID = comp.MoldID
		end.currentColor = comp.Color
		end.nextSequenceInDay = st.nextSequenceInDay
		if day != st.day {
			end.nextSequenceInDay = 1
		}
		end.nextSequenceInDay += len(tasks)

		return &plan{
			machineID: m.ID,
			placed:    true,
			day:       day,
			tasks:     tasks,
			qty:       q,
			endState:  end,
			cost: placementCost{
				day: day, produceStart: produceStart, moldChange: needMold, colorChange: needColor,
				remainingAfter: capHours - produceEnd, machineID: m.ID,
			},
		}
	}
}

func orNone(s string) string {
	if s == "" {
		return v1alpha1.NoneSentinel
	}
	return s
}

func unplacedCost(monthDays int, machineID string) placementCost {
	return placementCost{day: monthDays + 1, machineID: machineID}
}

// commit applies the winning plan: it mutates the owning machine's state,
// records mold-busy intervals, advances demand bookkeeping, and emits the
// plan's tasks as assignments. An assertion-style guard rejects any commit
// that would violate the non-overlap or capacity invariants.
func (d *decoderState) commit(comp v1alpha1.Component, p *plan) error {
	m := d.catalog.MachineByID[p.machineID]
	capHours := capacityOf(m)
	st := d.states[p.machineID]
	seq := st.nextSequenceInDay
	if p.day != st.day {
		seq = 1
	}

	prevEnd := 0.0
	if p.day == st.day {
		prevEnd = st.usedHoursToday
	}
	for i, t := range p.tasks {
		if t.start < prevEnd-epsilon || t.end < t.start-epsilon {
			return v1alpha1.NewInternalError("non-monotonic timeline on machine %q day %d: task %d starts at %v before prior end %v", p.machineID, p.day, i, t.start, prevEnd)
		}
		if t.end > capHours+epsilon {
			return v1alpha1.NewInternalError("task on machine %q day %d ends at %v past capacity %v", p.machineID, p.day, t.end, capHours)
		}
		prevEnd = t.end
	}

	for _, t := range p.tasks {
		a := v1alpha1.Assignment{
			Day: p.day, MachineID: m.ID, MachineName: m.Name,
			SequenceInDay: seq, TaskType: t.taskType,
			StartHour: t.start, EndHour: t.end, UsedHours: t.used,
			Utilization: t.used / capHours,
		}
		switch t.taskType {
		case v1alpha1.TaskProduce:
			a.ComponentID = comp.ID
			a.ComponentName = comp.Name
			a.ProducedQty = t.qty
			a.MoldID = comp.MoldID
			a.Color = comp.Color
		case v1alpha1.TaskChangeColor:
			a.FromColor, a.ToColor = t.fromColor, t.toColor
		case v1alpha1.TaskChangeMold:
			a.FromMoldID, a.ToMoldID = t.fromMold, t.toMold
		}
		d.assignments = append(d.assignments, a)
		seq++

		if t.taskType == v1alpha1.TaskChangeMold {
			d.moldBusy.add(comp.MoldID, p.day, t.start, t.end)
		}
		if t.taskType == v1alpha1.TaskProduce {
			d.moldBusy.add(comp.MoldID, p.day, t.start, t.end)
		}
	}

	*st = p.endState

	wasZero := d.producedToDate[comp.ID] == 0
	if wasZero && p.qty > 0 {
		d.firstProduceDay[comp.ID] = p.day
	}
	d.producedToDate[comp.ID] += p.qty
	d.remaining[comp.ID] -= p.qty
	if d.remaining[comp.ID] == 0 {
		d.finishDay[comp.ID] = p.day
		d.finishHour[comp.ID] = p.endState.usedHoursToday
	}
	return nil
}
