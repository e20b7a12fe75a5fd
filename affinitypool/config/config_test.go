/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package config_test

import (
	"github.com/affinitypool/affinitypool/affinitypool/config"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Load", func() {
	It("decodes a complete document", func() {
		c, err := config.Load([]byte(`{
			"name": "api-pool",
			"parallelism_min": 2,
			"parallelism_factor": 1.5,
			"parallelism_max": 32,
			"affinity_group_size": 32,
			"worker_waiting_strategy": "yield",
			"cpu_affinity_strategies": ["same-socket", "different-core"]
		}`))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(c.Name).Should(Equal("api-pool"))
		Expect(c.ParallelismMin).Should(Equal(uint32(2)))
		Expect(c.ParallelismFactor).Should(Equal(1.5))
		Expect(c.ParallelismMax).Should(Equal(uint32(32)))
		Expect(c.AffinityGroupSize).Should(Equal(32))
		Expect(c.WorkerWaitingStrategy).Should(Equal("yield"))
		Expect(c.CPUAffinityStrategies).Should(Equal([]string{"same-socket", "different-core"}))
	})

	It("rejects malformed JSON", func() {
		_, err := config.Load([]byte(`not json`))
		Expect(err).Should(HaveOccurred())
	})

	It("rejects an unknown worker waiting strategy", func() {
		_, err := config.Load([]byte(`{"affinity_group_size": 1, "worker_waiting_strategy": "spin-park"}`))
		Expect(err).Should(HaveOccurred())
	})

	It("rejects an unknown cpu affinity strategy token", func() {
		_, err := config.Load([]byte(`{"affinity_group_size": 1, "cpu_affinity_strategies": ["same-galaxy"]}`))
		Expect(err).Should(HaveOccurred())
	})

	It("rejects a non-positive affinity group size", func() {
		_, err := config.Load([]byte(`{"affinity_group_size": 0}`))
		Expect(err).Should(HaveOccurred())
	})

	It("rejects parallelism_min greater than parallelism_max", func() {
		_, err := config.Load([]byte(`{"affinity_group_size": 1, "parallelism_min": 8, "parallelism_max": 4}`))
		Expect(err).Should(HaveOccurred())
	})
})

var _ = Describe("Config.Parallelism", func() {
	It("applies the factor and rounds up to a power of two", func() {
		c := &config.Config{AffinityGroupSize: 1, ParallelismFactor: 1.5}
		Expect(c.Parallelism(4)).Should(Equal(uint32(8))) // ceil(4*1.5)=6 -> 8
	})

	It("defaults the factor to 1.0 when zero", func() {
		c := &config.Config{AffinityGroupSize: 1}
		Expect(c.Parallelism(4)).Should(Equal(uint32(4)))
		Expect(c.Parallelism(3)).Should(Equal(uint32(4)))
	})

	It("clamps to ParallelismMin and ParallelismMax", func() {
		c := &config.Config{AffinityGroupSize: 1, ParallelismMin: 16, ParallelismMax: 64}
		Expect(c.Parallelism(1)).Should(Equal(uint32(16)))

		c = &config.Config{AffinityGroupSize: 1, ParallelismMax: 2}
		Expect(c.Parallelism(64)).Should(Equal(uint32(2)))
	})

	It("treats a non-positive CPU count as one CPU", func() {
		c := &config.Config{AffinityGroupSize: 1}
		Expect(c.Parallelism(0)).Should(Equal(uint32(1)))
	})
})
