//go:build linux

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

package threadfactory

import (
	"golang.org/x/sys/unix"
)

// applyAffinity restricts the calling (already locked) OS thread to cpu.
func applyAffinity(cpu int) {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)

	// Best-effort: an unprivileged or containerized process may not be
	// permitted to set another CPU's affinity mask; ignore the error
	// rather than failing worker startup over a scheduling hint.
	_ = unix.SchedSetaffinity(0, &set)
}
