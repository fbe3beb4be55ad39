// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fmath

import "github.com/go-highway/fmath/hwy/contrib/workerpool"

// MinParallel is the element count below which ParallelExp and ParallelLog
// run on the calling goroutine.
const MinParallel = 16384

// ParallelAlign is the chunk alignment used by the parallel entry points:
// one iteration of the unrolled exp loop.
const ParallelAlign = 2 * 16

// ParallelExp is Exp with the work split across pool. Chunks are disjoint,
// so the result equals that of the serial call.
func (im *Image) ParallelExp(pool *workerpool.Pool, dst, src []float32) {
	im.parallel(pool, im.Exp, dst, src)
}

// ParallelLog is Log with the work split across pool.
func (im *Image) ParallelLog(pool *workerpool.Pool, dst, src []float32) {
	im.parallel(pool, im.Log, dst, src)
}

func (im *Image) parallel(pool *workerpool.Pool, fn Kernel, dst, src []float32) {
	im.mustBeFrozen()
	n := min(len(dst), len(src))
	if pool == nil || n < MinParallel {
		fn(dst[:n], src[:n])
		return
	}
	pool.ForAligned(n, ParallelAlign, func(start, end int) {
		fn(dst[start:end], src[start:end])
	})
}
