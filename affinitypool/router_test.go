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

package affinitypool_test

import (
	"sync"

	"github.com/affinitypool/affinitypool/affinitypool"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("AffinityRouter", func() {
	It("always routes into [0, n)", func() {
		router := affinitypool.NewAffinityRouter(5)
		for i := 0; i < 50; i++ {
			task := affinitypool.TaskFunc(func() {})
			idx := router.Route(task)
			Expect(idx).Should(BeNumerically("<", 5))
		}
	})

	It("routes the same task to the same index on every call", func() {
		router := affinitypool.NewAffinityRouter(8)
		task := affinitypool.TaskFunc(func() {})

		first := router.Route(task)
		for i := 0; i < 20; i++ {
			Expect(router.Route(task)).Should(Equal(first))
		}
	})

	It("never routes a fresh key to more than two distinct indices under concurrency", func() {
		router := affinitypool.NewAffinityRouter(16)
		task := affinitypool.TaskFunc(func() {})

		const racers = 64
		results := make([]uint32, racers)
		var wg sync.WaitGroup
		wg.Add(racers)
		for i := 0; i < racers; i++ {
			i := i
			go func() {
				defer wg.Done()
				results[i] = router.Route(task)
			}()
		}
		wg.Wait()

		distinct := make(map[uint32]struct{})
		for _, idx := range results {
			distinct[idx] = struct{}{}
		}
		Expect(len(distinct)).Should(BeNumerically("<=", 2))
	})
})
