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

// Package config loads and validates the JSON document that configures a
// pool before it is built.
package config

import (
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
)

// Config is the JSON-serializable description of a pool, prior to
// resolving parallelism against the host's CPU count.
type Config struct {
	// Name identifies the pool in rejection errors.
	Name string `json:"name"`

	// ParallelismMin, ParallelismFactor and ParallelismMax derive the
	// worker count from the host: N = clamp(ceil(NumCPU * Factor), Min,
	// Max), rounded up to the next power of two. ParallelismFactor
	// defaults to 1.0 when zero.
	ParallelismMin    uint32  `json:"parallelism_min"`
	ParallelismFactor float64 `json:"parallelism_factor"`
	ParallelismMax    uint32  `json:"parallelism_max"`

	// AffinityGroupSize is the fixed capacity of each worker's queue.
	AffinityGroupSize int `json:"affinity_group_size"`

	// WorkerWaitingStrategy names the back-off a worker uses when its
	// queue is empty: "busy-spin", "yield", or "sleep".
	WorkerWaitingStrategy string `json:"worker_waiting_strategy"`

	// CPUAffinityStrategies is consumed by affinitypool/threadfactory,
	// e.g. ["same-core"] or ["same-socket", "different-core"]. Empty
	// means no pinning preference.
	CPUAffinityStrategies []string `json:"cpu_affinity_strategies"`
}

// Load decodes a JSON document into a Config and validates it.
func Load(data []byte) (*Config, error) {
	var c Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("affinitypool/config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validCPUAffinityStrategies = map[string]bool{
	"any":              true,
	"same-core":        true,
	"different-core":   true,
	"same-socket":      true,
	"different-socket": true,
}

// Validate reports the first structural problem with c, if any.
// ParallelismMin/Max of 0 are valid (they are resolved later against the
// host's CPU count by Parallelism); everything else must already be in
// range.
func (c *Config) Validate() error {
	if c.AffinityGroupSize < 1 {
		return fmt.Errorf("affinitypool/config: affinity_group_size must be >= 1, got %d", c.AffinityGroupSize)
	}
	if c.ParallelismMax != 0 && c.ParallelismMin > c.ParallelismMax {
		return fmt.Errorf("affinitypool/config: parallelism_min (%d) must not exceed parallelism_max (%d)",
			c.ParallelismMin, c.ParallelismMax)
	}
	switch c.WorkerWaitingStrategy {
	case "", "busy-spin", "yield", "sleep":
	default:
		return fmt.Errorf("affinitypool/config: unknown worker_waiting_strategy %q", c.WorkerWaitingStrategy)
	}
	for _, s := range c.CPUAffinityStrategies {
		if !validCPUAffinityStrategies[s] {
			return fmt.Errorf("affinitypool/config: unknown cpu_affinity_strategies entry %q", s)
		}
	}
	return nil
}

// Parallelism resolves N = clamp(ceil(numCPU * ParallelismFactor), Min,
// Max), rounded up to the next power of two so the router can use its
// mask-based fast path.
func (c *Config) Parallelism(numCPU int) uint32 {
	if numCPU < 1 {
		numCPU = 1
	}

	factor := c.ParallelismFactor
	if factor == 0 {
		factor = 1.0
	}

	n := uint32(math.Ceil(float64(numCPU) * factor))
	if n < 1 {
		n = 1
	}
	if c.ParallelismMin > 0 && n < c.ParallelismMin {
		n = c.ParallelismMin
	}
	if c.ParallelismMax > 0 && n > c.ParallelismMax {
		n = c.ParallelismMax
	}

	return nextPowerOfTwo(n)
}

func nextPowerOfTwo(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	if n&(n-1) == 0 {
		return n
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}
