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
	"github.com/modern-go/reflect2"
)

// TaskKey is a stable, content-independent identity for a submitted Task.
// Two Task values considered "the same task" by a caller (the same
// pointer, the same bound closure) yield equal TaskKeys; nothing about the
// key is derived from the task's content.
type TaskKey uintptr

// TaskKeyOf computes the TaskKey of task. Go has no identity-hash builtin
// (unlike System.identityHashCode or id()), so this extracts the data
// pointer carried by task's interface value via reflect2.PtrOf — the same
// technique json-iterator (built on reflect2) uses internally to recover a
// concrete pointer from an interface{} without paying for reflect.Value
// boxing on the hot path.
//
// Value-typed tasks (a non-pointer struct implementing Task, for
// instance) are copied each time they are converted to a Task, so they do
// not have a stable pointer identity across calls; callers that want
// affinity for such a task must submit it as a pointer so the same logical
// task always arrives as the same pointer.
func TaskKeyOf(task Task) TaskKey {
	return TaskKey(uintptr(reflect2.PtrOf(task)))
}
