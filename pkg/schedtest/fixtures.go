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

// Package schedtest provides shared fixture builders for tests exercising
// the scheduler core: small, composable constructors for machines, molds,
// and components, with randomly generated names so larger scenario
// tests don't need to hand-author dozens of string literals.
package schedtest

import (
	"strings"

	"github.com/Pallinder/go-randomdata"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
)

// Machine returns a machine fixture with sensible defaults, overridable via
// functional options.
func Machine(id string, opts ...func(*v1alpha1.Machine)) v1alpha1.Machine {
	m := v1alpha1.Machine{
		ID:          id,
		Name:        strings.ToLower(randomdata.SillyName()),
		Group:       v1alpha1.GroupSmall,
		Tonnage:     120,
		HoursPerDay: 12,
		Efficiency:  1.0,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func WithGroup(g v1alpha1.Group) func(*v1alpha1.Machine) {
	return func(m *v1alpha1.Machine) { m.Group = g }
}

func WithTonnage(t float64) func(*v1alpha1.Machine) {
	return func(m *v1alpha1.Machine) { m.Tonnage = t }
}

func WithHoursPerDay(h float64) func(*v1alpha1.Machine) {
	return func(m *v1alpha1.Machine) { m.HoursPerDay = h }
}

func WithEfficiency(e float64) func(*v1alpha1.Machine) {
	return func(m *v1alpha1.Machine) { m.Efficiency = e }
}

// Mold returns a mold fixture, overridable via functional options.
func Mold(id string, opts ...func(*v1alpha1.Mold)) v1alpha1.Mold {
	m := v1alpha1.Mold{
		ID:      id,
		Name:    strings.ToLower(randomdata.SillyName()),
		Group:   v1alpha1.GroupSmall,
		Tonnage: 80,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func WithMoldGroup(g v1alpha1.Group) func(*v1alpha1.Mold) {
	return func(m *v1alpha1.Mold) { m.Group = g }
}

func WithMoldTonnage(t float64) func(*v1alpha1.Mold) {
	return func(m *v1alpha1.Mold) { m.Tonnage = t }
}

// Component returns a component fixture, overridable via functional options.
func Component(id, moldID string, opts ...func(*v1alpha1.Component)) v1alpha1.Component {
	c := v1alpha1.Component{
		ID:           id,
		Name:         randomdata.SillyName(),
		MoldID:       moldID,
		Color:        "red",
		CycleTimeSec: 30,
		Quantity:     100,
		DueDay:       1,
		LeadTimeDays: 0,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func WithColor(c string) func(*v1alpha1.Component) {
	return func(comp *v1alpha1.Component) { comp.Color = c }
}

func WithCycleTimeSec(s float64) func(*v1alpha1.Component) {
	return func(comp *v1alpha1.Component) { comp.CycleTimeSec = s }
}

func WithQuantity(q int) func(*v1alpha1.Component) {
	return func(comp *v1alpha1.Component) { comp.Quantity = q }
}

func WithDueDay(d int) func(*v1alpha1.Component) {
	return func(comp *v1alpha1.Component) { comp.DueDay = d }
}

func WithLeadTimeDays(d int) func(*v1alpha1.Component) {
	return func(comp *v1alpha1.Component) { comp.LeadTimeDays = d }
}

func WithPrerequisites(ids ...string) func(*v1alpha1.Component) {
	return func(comp *v1alpha1.Component) { comp.Prerequisites = ids }
}

// Request assembles a full request from fixtures, with the GA knobs set to
// values small enough for fast, deterministic unit tests.
func Request(monthDays int, machines []v1alpha1.Machine, molds []v1alpha1.Mold, components []v1alpha1.Component) *v1alpha1.Request {
	seed := int64(7)
	return &v1alpha1.Request{
		MonthDays:            monthDays,
		MoldChangeTimeHours:  1,
		ColorChangeTimeHours: 0.5,
		Machines:             machines,
		Molds:                molds,
		Components:           components,
		PopSize:              8,
		NGenerations:         5,
		MutationRate:         0.2,
		Seed:                 &seed,
	}
}
