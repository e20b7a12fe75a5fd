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

package threadfactory_test

import (
	"sync"

	"github.com/affinitypool/affinitypool/affinitypool/threadfactory"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseAffinityStrategy", func() {
	It("maps known tokens", func() {
		strategy, err := threadfactory.ParseAffinityStrategy("")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(strategy).Should(Equal(threadfactory.Any))

		strategy, err = threadfactory.ParseAffinityStrategy("same-core")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(strategy).Should(Equal(threadfactory.SameCore))

		strategy, err = threadfactory.ParseAffinityStrategy("different-core")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(strategy).Should(Equal(threadfactory.DifferentCore))

		strategy, err = threadfactory.ParseAffinityStrategy("same-socket")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(strategy).Should(Equal(threadfactory.SameSocket))

		strategy, err = threadfactory.ParseAffinityStrategy("different-socket")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(strategy).Should(Equal(threadfactory.DifferentSocket))
	})

	It("rejects an unknown token", func() {
		_, err := threadfactory.ParseAffinityStrategy("cpu-float")
		Expect(err).Should(HaveOccurred())
	})
})

var _ = Describe("PinnedThreadFactory", func() {
	It("runs the given loop exactly once per NewThread call", func() {
		factory := &threadfactory.PinnedThreadFactory{
			Strategy: threadfactory.DifferentCore,
			CPUs:     []int{0, 1},
		}

		var wg sync.WaitGroup
		const n = 4
		wg.Add(n)
		for i := 0; i < n; i++ {
			factory.NewThread(func() {
				wg.Done()
			})
		}
		wg.Wait()
	})
})
