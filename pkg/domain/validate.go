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
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
)

// Validate normalizes and checks a request per the domain validator
// contract: duplicate/empty ids, unknown foreign keys, self/cyclic
// prerequisites, and out-of-range numerics all fail with a
// *v1alpha1.ValidationError identifying the first offending item.
// Feasibility (e.g. "no machine admits this mold") is deliberately not
// checked here; that is the scheduler's INFEASIBLE_INPUT concern, raised
// once placement is actually attempted.
func Validate(req *v1alpha1.Request) (*Catalog, error) {
	var errs error

	if req.MonthDays < 1 {
		errs = multierr.Append(errs, fmt.Errorf("month_days must be >= 1, got %d", req.MonthDays))
	}
	if req.MoldChangeTimeHours < 0 {
		errs = multierr.Append(errs, fmt.Errorf("mold_change_time_hours must be >= 0"))
	}
	if req.ColorChangeTimeHours < 0 {
		errs = multierr.Append(errs, fmt.Errorf("color_change_time_hours must be >= 0"))
	}
	if req.PopSize < 2 {
		errs = multierr.Append(errs, fmt.Errorf("pop_size must be >= 2, got %d", req.PopSize))
	}
	if req.NGenerations < 1 {
		errs = multierr.Append(errs, fmt.Errorf("n_generations must be >= 1, got %d", req.NGenerations))
	}
	if req.MutationRate < 0 || req.MutationRate > 1 {
		errs = multierr.Append(errs, fmt.Errorf("mutation_rate must be in [0,1], got %v", req.MutationRate))
	}
	if req.Weights != nil {
		overrides := map[string]*float64{
			"w_unmet": req.Weights.Unmet, "w_setup": req.Weights.Setup,
			"w_tardy": req.Weights.Tardy, "w_wait": req.Weights.Wait,
		}
		names := lo.Keys(overrides)
		sort.Strings(names) // map iteration order isn't stable; "reported once" needs a deterministic first offender.
		for _, name := range names {
			if w := overrides[name]; w != nil && *w < 0 {
				errs = multierr.Append(errs, fmt.Errorf("weight override %s must be >= 0, got %v", name, *w))
			}
		}
	}
	if errs != nil {
		return nil, firstError(errs)
	}

	machineByID, err := validateMachines(req.Machines)
	if err != nil {
		return nil, err
	}
	moldByID, err := validateMolds(req.Molds)
	if err != nil {
		return nil, err
	}
	componentByID, err := validateComponents(req.Components, moldByID)
	if err != nil {
		return nil, err
	}

	prereqs, dependents := buildPrereqGraph(req.Components)
	topoOrder, levels, err := topoSort(req.Components, prereqs)
	if err != nil {
		return nil, err
	}

	admitting := lo.SliceToMap(req.Molds, func(mold v1alpha1.Mold) (string, []v1alpha1.Machine) {
		admits := lo.Filter(req.Machines, func(m v1alpha1.Machine, _ int) bool { return m.Admits(mold) })
		sort.Slice(admits, func(i, j int) bool {
			if admits[i].Tonnage != admits[j].Tonnage {
				return admits[i].Tonnage < admits[j].Tonnage
			}
			return admits[i].ID < admits[j].ID
		})
		return mold.ID, admits
	})

	return &Catalog{
		MonthDays:            req.MonthDays,
		MoldChangeTimeHours:  req.MoldChangeTimeHours,
		ColorChangeTimeHours: req.ColorChangeTimeHours,
		Machines:             req.Machines,
		Molds:                req.Molds,
		Components:           req.Components,
		MachineByID:          machineByID,
		MoldByID:             moldByID,
		ComponentByID:        componentByID,
		AdmittingMachines:    admitting,
		TopoOrder:            topoOrder,
		Levels:                levels,
		Prerequisites:        prereqs,
		Dependents:           dependents,
	}, nil
}

func validateMachines(machines []v1alpha1.Machine) (map[string]v1alpha1.Machine, error) {
	byID := map[string]v1alpha1.Machine{}
	for _, m := range machines {
		if m.ID == "" {
			return nil, v1alpha1.NewValidationError("machine has an empty id")
		}
		if _, dup := byID[m.ID]; dup {
			return nil, v1alpha1.NewValidationError("duplicate machine id %q", m.ID)
		}
		if m.Group != v1alpha1.GroupSmall && m.Group != v1alpha1.GroupMedium && m.Group != v1alpha1.GroupLarge {
			return nil, v1alpha1.NewValidationError("machine %q has invalid group %q", m.ID, m.Group)
		}
		if m.Tonnage <= 0 {
			return nil, v1alpha1.NewValidationError("machine %q tonnage must be > 0", m.ID)
		}
		if m.HoursPerDay <= 0 {
			return nil, v1alpha1.NewValidationError("machine %q hours_per_day must be > 0", m.ID)
		}
		if m.Efficiency <= 0 || m.Efficiency > 1.5 {
			return nil, v1alpha1.NewValidationError("machine %q efficiency must be in (0, 1.5], got %v", m.ID, m.Efficiency)
		}
		byID[m.ID] = m
	}
	return byID, nil
}

func validateMolds(molds []v1alpha1.Mold) (map[string]v1alpha1.Mold, error) {
	byID := map[string]v1alpha1.Mold{}
	for _, m := range molds {
		if m.ID == "" {
			return nil, v1alpha1.NewValidationError("mold has an empty id")
		}
		if _, dup := byID[m.ID]; dup {
			return nil, v1alpha1.NewValidationError("duplicate mold id %q", m.ID)
		}
		if m.Group != v1alpha1.GroupSmall && m.Group != v1alpha1.GroupMedium && m.Group != v1alpha1.GroupLarge {
			return nil, v1alpha1.NewValidationError("mold %q has invalid group %q", m.ID, m.Group)
		}
		if m.Tonnage <= 0 {
			return nil, v1alpha1.NewValidationError("mold %q tonnage must be > 0", m.ID)
		}
		byID[m.ID] = m
	}
	return byID, nil
}

func validateComponents(components []v1alpha1.Component, moldByID map[string]v1alpha1.Mold) (map[string]v1alpha1.Component, error) {
	byID := map[string]v1alpha1.Component{}
	for _, c := range components {
		if c.ID == "" {
			return nil, v1alpha1.NewValidationError("component has an empty id")
		}
		if _, dup := byID[c.ID]; dup {
			return nil, v1alpha1.NewValidationError("duplicate component id %q", c.ID)
		}
		if _, ok := moldByID[c.MoldID]; !ok {
			return nil, v1alpha1.NewValidationError("component %q references unknown mold_id %q", c.ID, c.MoldID)
		}
		if c.CycleTimeSec <= 0 {
			return nil, v1alpha1.NewValidationError("component %q cycle_time_sec must be > 0", c.ID)
		}
		if c.Quantity <= 0 {
			return nil, v1alpha1.NewValidationError("component %q quantity must be > 0", c.ID)
		}
		if c.DueDay < 1 {
			return nil, v1alpha1.NewValidationError("component %q due_day must be >= 1", c.ID)
		}
		if c.LeadTimeDays < 0 {
			return nil, v1alpha1.NewValidationError("component %q lead_time_days must be >= 0", c.ID)
		}
		for _, p := range c.Prerequisites {
			if p == c.ID {
				return nil, v1alpha1.NewValidationError("component %q lists itself as a prerequisite", c.ID)
			}
		}
		byID[c.ID] = c
	}
	// Second pass: prerequisite ids must resolve, which requires every
	// component id to already be known.
	for _, c := range components {
		for _, p := range c.Prerequisites {
			if _, ok := byID[p]; !ok {
				return nil, v1alpha1.NewValidationError("component %q references unknown prerequisite %q", c.ID, p)
			}
		}
	}
	return byID, nil
}

// firstError returns a *v1alpha1.ValidationError describing only the first
// item accumulated in a multierr chain, per the "reported once" policy.
func firstError(errs error) error {
	all := multierr.Errors(errs)
	if len(all) == 0 {
		return nil
	}
	return v1alpha1.NewValidationError("%s", all[0].Error())
}
