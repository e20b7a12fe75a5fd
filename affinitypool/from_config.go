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

package affinitypool

import (
	"github.com/affinitypool/affinitypool/affinitypool/config"
	"github.com/affinitypool/affinitypool/affinitypool/threadfactory"
)

// NewPoolFromConfig builds a Pool from a decoded config.Config, resolving
// parallelism against numCPU and wiring a PinnedThreadFactory from the
// configured CPU affinity strategies. cpus lists the logical CPU indices
// available for pinning; it is ignored unless the resolved strategy is
// same-core or different-core. A config that fails validation is reported
// as an *InvalidArgumentError.
func NewPoolFromConfig(c *config.Config, numCPU int, cpus []int) (*Pool, error) {
	if err := c.Validate(); err != nil {
		return nil, &InvalidArgumentError{Reason: err.Error()}
	}

	wait, err := NewWaitStrategy(c.WorkerWaitingStrategy)
	if err != nil {
		return nil, err
	}

	strategy := threadfactory.Any
	for _, token := range c.CPUAffinityStrategies {
		parsed, err := threadfactory.ParseAffinityStrategy(token)
		if err != nil {
			return nil, &InvalidArgumentError{Reason: err.Error()}
		}
		if parsed != threadfactory.Any {
			strategy = parsed
		}
	}

	return NewPool(Config{
		Parallelism:       c.Parallelism(numCPU),
		AffinityGroupSize: c.AffinityGroupSize,
		Wait:              wait,
		ThreadFactory: &threadfactory.PinnedThreadFactory{
			Strategy: strategy,
			CPUs:     cpus,
		},
		Name: c.Name,
	})
}
