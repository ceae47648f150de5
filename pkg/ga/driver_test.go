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

package ga

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1alpha1 "github.com/taskalign/scheduler/pkg/apis/v1alpha1"
	"github.com/taskalign/scheduler/pkg/domain"
	"github.com/taskalign/scheduler/pkg/fitness"
	"github.com/taskalign/scheduler/pkg/schedtest"
)

var _ = Describe("Run", func() {
	var cat *domain.Catalog

	BeforeEach(func() {
		machines := []v1alpha1.Machine{
			schedtest.Machine("M1", schedtest.WithTonnage(120)),
			schedtest.Machine("M2", schedtest.WithTonnage(120)),
		}
		molds := []v1alpha1.Mold{
			schedtest.Mold("MO1", schedtest.WithMoldTonnage(80)),
			schedtest.Mold("MO2", schedtest.WithMoldTonnage(80)),
		}
		components := []v1alpha1.Component{
			schedtest.Component("C1", "MO1", schedtest.WithCycleTimeSec(40), schedtest.WithQuantity(200)),
			schedtest.Component("C2", "MO2", schedtest.WithColor("blue"), schedtest.WithCycleTimeSec(30), schedtest.WithQuantity(150), schedtest.WithPrerequisites("C1")),
			schedtest.Component("C3", "MO1", schedtest.WithColor("blue"), schedtest.WithCycleTimeSec(20), schedtest.WithQuantity(100)),
		}
		req := schedtest.Request(5, machines, molds, components)
		var err error
		cat, err = domain.Validate(req)
		Expect(err).NotTo(HaveOccurred())
	})

	It("is deterministic for a fixed seed", func() {
		opts := Options{PopSize: 6, NGenerations: 4, MutationRate: 0.3, Seed: 42, Weights: fitness.DefaultWeights()}
		out1, err := Run(context.Background(), cat, opts)
		Expect(err).NotTo(HaveOccurred())
		out2, err := Run(context.Background(), cat, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(out1.Score).To(Equal(out2.Score))
		Expect(out1.BestIDs).To(Equal(out2.BestIDs))
	})

	It("never regresses the best score across generations (elitism)", func() {
		opts := Options{PopSize: 6, NGenerations: 6, MutationRate: 0.5, Seed: 7, Weights: fitness.DefaultWeights()}
		out, err := Run(context.Background(), cat, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Best).NotTo(BeEmpty())
		Expect(out.Result).NotTo(BeNil())

		// Same seed, so the first generation is identical; later generations
		// must not end worse than it.
		firstOnly := opts
		firstOnly.NGenerations = 1
		first, err := Run(context.Background(), cat, firstOnly)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Score).To(BeNumerically("<=", first.Score))
	})

	It("returns a best-so-far result when the context is already cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		opts := Options{PopSize: 6, NGenerations: 50, MutationRate: 0.3, Seed: 1, Weights: fitness.DefaultWeights()}
		out, err := Run(ctx, cat, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Partial).To(BeTrue())
	})
})
