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

package domain_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/domain"
	"github.com/taskalign/scheduler/pkg/schedtest"
)

var _ = Describe("LevelOrderShuffle", func() {
	It("never places a component before one of its own prerequisites", func() {
		machines := []v1alpha1.Machine{schedtest.Machine("M1")}
		molds := []v1alpha1.Mold{schedtest.Mold("MO1")}
		components := []v1alpha1.Component{
			schedtest.Component("C1", "MO1"),
			schedtest.Component("C2", "MO1", schedtest.WithPrerequisites("C1")),
			schedtest.Component("C3", "MO1", schedtest.WithPrerequisites("C1", "C2")),
		}
		req := schedtest.Request(1, machines, molds, components)
		cat, err := domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())

		r := rand.New(rand.NewSource(1))
		for trial := 0; trial < 20; trial++ {
			perm := domain.LevelOrderShuffle(cat, func(s []string) { r.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] }) })
			Expect(perm).To(HaveLen(3))
			pos := map[string]int{}
			for i, id := range perm {
				pos[id] = i
			}
			for _, id := range perm {
				for _, p := range cat.Prerequisites[id] {
					Expect(pos[p]).To(BeNumerically("<", pos[id]))
				}
			}
		}
	})
})
