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

// Package threadfactory provides an affinitypool.ThreadFactory that pins each
// worker's goroutine to a single OS thread, and optionally to a specific
// logical CPU. It satisfies affinitypool.ThreadFactory structurally,
// without importing that package, to avoid a dependency cycle.
package threadfactory

import (
	"fmt"
	"runtime"
)

// AffinityStrategy selects how a worker's OS thread is pinned to a CPU.
// The set of tokens mirrors the cpu_affinity_strategies config values.
type AffinityStrategy int

const (
	// Any pins the goroutine to its OS thread (via runtime.LockOSThread)
	// but does not restrict which CPU that thread may run on.
	Any AffinityStrategy = iota

	// SameCore pins each worker to cpus[workerID % len(cpus)].
	SameCore

	// DifferentCore assigns each worker a distinct entry of cpus in
	// round-robin order, so no two workers share a mask when len(cpus) >=
	// the worker count.
	DifferentCore

	// SameSocket and DifferentSocket name socket-topology-aware pinning.
	// Detecting socket topology needs a dependency this module doesn't
	// carry, so PinnedThreadFactory treats both the same as Any on every
	// platform — a documented limitation, not a silent gap.
	SameSocket
	DifferentSocket
)

// ParseAffinityStrategy parses one cpu_affinity_strategies token.
func ParseAffinityStrategy(s string) (AffinityStrategy, error) {
	switch s {
	case "", "any":
		return Any, nil
	case "same-core":
		return SameCore, nil
	case "different-core":
		return DifferentCore, nil
	case "same-socket":
		return SameSocket, nil
	case "different-socket":
		return DifferentSocket, nil
	default:
		return Any, fmt.Errorf("affinitypool/threadfactory: unknown affinity strategy %q", s)
	}
}

// PinnedThreadFactory starts each worker loop on its own locked OS thread,
// pinning it to a CPU drawn from CPUs (logical CPU indices, 0-based)
// according to Strategy. CPUs is ignored unless Strategy is SameCore or
// DifferentCore.
type PinnedThreadFactory struct {
	Strategy AffinityStrategy
	CPUs     []int

	nextWorker int
}

// NewThread implements the NewThread(func()) method of
// affinitypool.ThreadFactory.
func (f *PinnedThreadFactory) NewThread(loop func()) {
	workerID := f.nextWorker
	f.nextWorker++

	var cpu int
	haveCPU := false
	if (f.Strategy == SameCore || f.Strategy == DifferentCore) && len(f.CPUs) > 0 {
		cpu = f.CPUs[workerID%len(f.CPUs)]
		haveCPU = true
	}

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if haveCPU {
			applyAffinity(cpu)
		}

		loop()
	}()
}
