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

package scheduling_test

import (
	"sort"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/domain"
	"github.com/taskalign/scheduler/pkg/scheduling"
	"github.com/taskalign/scheduler/pkg/schedtest"
)

// assertInvariants checks the property-based invariants of spec §8 against
// every assignment in a decoded result.
func assertInvariants(cat *domain.Catalog, result *scheduling.Result) {
	byMachineDay := map[string][]v1alpha1.Assignment{}
	for _, a := range result.Assignments {
		key := a.MachineID + "|" + strconv.Itoa(a.Day)
		byMachineDay[key] = append(byMachineDay[key], a)
	}
	for _, group := range byMachineDay {
		sort.Slice(group, func(i, j int) bool { return group[i].SequenceInDay < group[j].SequenceInDay })
		prevEnd := 0.0
		for i, a := range group {
			Expect(a.SequenceInDay).To(Equal(i + 1))
			Expect(a.StartHour).To(BeNumerically("~", prevEnd, 1e-6))
			Expect(a.EndHour).To(BeNumerically(">=", a.StartHour))
			prevEnd = a.EndHour
		}
		m := cat.MachineByID[group[0].MachineID]
		var total float64
		for _, a := range group {
			total += a.UsedHours
		}
		Expect(total).To(BeNumerically("<=", m.Capacity()+1e-6))
	}

	// Mold exclusivity: on the same day, PRODUCE/CHANGE_MOLD intervals for
	// the same mold on different machines must not overlap.
	byMoldDay := map[string][]v1alpha1.Assignment{}
	for _, a := range result.Assignments {
		if a.TaskType != v1alpha1.TaskProduce && a.TaskType != v1alpha1.TaskChangeMold {
			continue
		}
		moldID := a.MoldID
		if moldID == "" {
			moldID = a.ToMoldID
		}
		key := moldID + "|" + strconv.Itoa(a.Day)
		byMoldDay[key] = append(byMoldDay[key], a)
	}
	for _, group := range byMoldDay {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.MachineID == b.MachineID {
					continue
				}
				overlap := a.StartHour < b.EndHour && b.StartHour < a.EndHour
				Expect(overlap).To(BeFalse(), "mold interval overlap across machines")
			}
		}
	}

	// Group/tonnage admission for every PRODUCE.
	for _, a := range result.Assignments {
		if a.TaskType != v1alpha1.TaskProduce {
			continue
		}
		m := cat.MachineByID[a.MachineID]
		mold := cat.MoldByID[a.MoldID]
		Expect(m.Admits(mold)).To(BeTrue())
	}

	// Demand bound.
	produced := map[string]int{}
	for _, a := range result.Assignments {
		if a.TaskType == v1alpha1.TaskProduce {
			produced[a.ComponentID] += a.ProducedQty
		}
	}
	for _, c := range cat.Components {
		Expect(produced[c.ID] + result.Unmet[c.ID]).To(Equal(c.Quantity))
	}
}


var _ = Describe("Solve", func() {
	It("handles the empty-components boundary scenario", func() {
		machines := []v1alpha1.Machine{schedtest.Machine("M1")}
		molds := []v1alpha1.Mold{schedtest.Mold("MO1")}
		req := schedtest.Request(3, machines, molds, nil)
		cat, err := domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())
		result, err := scheduling.Solve(cat, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Assignments).To(BeEmpty())
		Expect(result.Unmet).To(BeEmpty())
	})

	It("meets every demand of three components on two machines and two molds (scenario 1 shape)", func() {
		machines := []v1alpha1.Machine{
			schedtest.Machine("M1", schedtest.WithTonnage(120)),
			schedtest.Machine("M2", schedtest.WithTonnage(120)),
		}
		molds := []v1alpha1.Mold{
			schedtest.Mold("MO1", schedtest.WithMoldTonnage(80)),
			schedtest.Mold("MO2", schedtest.WithMoldTonnage(80)),
		}
		components := []v1alpha1.Component{
			schedtest.Component("C1", "MO1", schedtest.WithColor("red"), schedtest.WithCycleTimeSec(40), schedtest.WithQuantity(800), schedtest.WithDueDay(3)),
			schedtest.Component("C2", "MO2", schedtest.WithColor("blue"), schedtest.WithCycleTimeSec(30), schedtest.WithQuantity(600), schedtest.WithDueDay(3), schedtest.WithPrerequisites("C1")),
			schedtest.Component("C3", "MO1", schedtest.WithColor("blue"), schedtest.WithCycleTimeSec(20), schedtest.WithQuantity(200), schedtest.WithDueDay(3)),
		}
		req := schedtest.Request(3, machines, molds, components)
		cat, err := domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())

		result, err := scheduling.Solve(cat, cat.TopoOrder)
		Expect(err).NotTo(HaveOccurred())
		assertInvariants(cat, result)
		Expect(result.Unmet).To(BeEmpty())
	})

	It("serializes two components sharing a mold across machines (scenario 4, mold exclusivity)", func() {
		machines := []v1alpha1.Machine{
			schedtest.Machine("M1", schedtest.WithTonnage(120)),
			schedtest.Machine("M2", schedtest.WithTonnage(120)),
		}
		molds := []v1alpha1.Mold{schedtest.Mold("MO1", schedtest.WithMoldTonnage(80))}
		components := []v1alpha1.Component{
			schedtest.Component("C1", "MO1", schedtest.WithColor("red"), schedtest.WithCycleTimeSec(20), schedtest.WithQuantity(50)),
			schedtest.Component("C2", "MO1", schedtest.WithColor("red"), schedtest.WithCycleTimeSec(20), schedtest.WithQuantity(50)),
		}
		req := schedtest.Request(3, machines, molds, components)
		cat, err := domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())

		result, err := scheduling.Solve(cat, cat.TopoOrder)
		Expect(err).NotTo(HaveOccurred())
		assertInvariants(cat, result)
		Expect(result.Unmet).To(BeEmpty())
	})

	It("saturates each day and records the residual in unmet (scenario 2, capacity-starved)", func() {
		machines := []v1alpha1.Machine{schedtest.Machine("M1", schedtest.WithTonnage(100), schedtest.WithHoursPerDay(8), schedtest.WithEfficiency(1.0))}
		molds := []v1alpha1.Mold{schedtest.Mold("MO1", schedtest.WithMoldTonnage(50))}
		components := []v1alpha1.Component{
			schedtest.Component("C1", "MO1", schedtest.WithCycleTimeSec(60), schedtest.WithQuantity(10000), schedtest.WithDueDay(2)),
		}
		req := &v1alpha1.Request{
			MonthDays: 2, MoldChangeTimeHours: 1, ColorChangeTimeHours: 0,
			Machines: machines, Molds: molds, Components: components,
			PopSize: 2, NGenerations: 1, MutationRate: 0,
		}
		cat, err := domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())

		result, err := scheduling.Solve(cat, cat.TopoOrder)
		Expect(err).NotTo(HaveOccurred())
		assertInvariants(cat, result)

		var produced int
		for _, a := range result.Assignments {
			if a.TaskType == v1alpha1.TaskProduce {
				produced += a.ProducedQty
			}
		}
		Expect(produced).To(Equal(900))
		Expect(result.Unmet["C1"]).To(Equal(9100))
	})

	It("emits a WAIT that bridges a same-day prerequisite finish (scenario 3)", func() {
		machines := []v1alpha1.Machine{
			schedtest.Machine("M1", schedtest.WithTonnage(120)),
			schedtest.Machine("M2", schedtest.WithTonnage(120)),
		}
		molds := []v1alpha1.Mold{
			schedtest.Mold("MO1", schedtest.WithMoldTonnage(80)),
			schedtest.Mold("MO2", schedtest.WithMoldTonnage(80)),
		}
		components := []v1alpha1.Component{
			schedtest.Component("C1", "MO1", schedtest.WithColor("red"), schedtest.WithCycleTimeSec(40), schedtest.WithQuantity(800)),
			schedtest.Component("C2", "MO2", schedtest.WithColor("blue"), schedtest.WithCycleTimeSec(30), schedtest.WithQuantity(50), schedtest.WithPrerequisites("C1")),
		}
		req := schedtest.Request(3, machines, molds, components)
		cat, err := domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())

		result, err := scheduling.Solve(cat, cat.TopoOrder)
		Expect(err).NotTo(HaveOccurred())
		assertInvariants(cat, result)
		Expect(result.Unmet).To(BeEmpty())

		// Find C1's finish (its latest PRODUCE end) and C2's first PRODUCE start.
		var c1FinishDay int
		var c1FinishHour float64
		for _, a := range result.Assignments {
			if a.TaskType == v1alpha1.TaskProduce && a.ComponentID == "C1" {
				if a.Day > c1FinishDay || (a.Day == c1FinishDay && a.EndHour > c1FinishHour) {
					c1FinishDay, c1FinishHour = a.Day, a.EndHour
				}
			}
		}
		for _, a := range result.Assignments {
			if a.TaskType == v1alpha1.TaskProduce && a.ComponentID == "C2" {
				Expect(a.Day).To(BeNumerically(">=", c1FinishDay))
				if a.Day == c1FinishDay {
					Expect(a.StartHour).To(BeNumerically(">=", c1FinishHour-1e-6))
				}
				break
			}
		}

		// C2's machine bridges the gap with a WAIT that ends exactly when C1 finishes.
		var sawWait bool
		for _, a := range result.Assignments {
			if a.TaskType == v1alpha1.TaskWait && a.Day == c1FinishDay {
				Expect(a.EndHour).To(BeNumerically("~", c1FinishHour, 1e-6))
				sawWait = true
			}
		}
		Expect(sawWait).To(BeTrue())
	})

	It("fails with INFEASIBLE_INPUT when a component's mold admits no machine (scenario 6)", func() {
		machines := []v1alpha1.Machine{schedtest.Machine("M1", schedtest.WithGroup(v1alpha1.GroupLarge), schedtest.WithTonnage(500))}
		molds := []v1alpha1.Mold{schedtest.Mold("MO1", schedtest.WithMoldGroup(v1alpha1.GroupSmall), schedtest.WithMoldTonnage(80))}
		components := []v1alpha1.Component{schedtest.Component("C1", "MO1")}
		req := schedtest.Request(3, machines, molds, components)
		cat, err := domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())

		_, err = scheduling.Solve(cat, cat.TopoOrder)
		Expect(err).To(HaveOccurred())
		_, ok := err.(*v1alpha1.InfeasibleInputError)
		Expect(ok).To(BeTrue())
	})
})
