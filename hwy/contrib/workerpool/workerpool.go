// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool runs one large slice operation on a fixed set of
// persistent goroutines. The range is cut into contiguous chunks whose
// boundaries are multiples of a caller-chosen alignment, so every chunk but
// the last holds whole vector blocks and only the final chunk has a tail.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ForAligned(len(src), 32, func(start, end int) {
//	    img.Exp(dst[start:end], src[start:end])
//	})
package workerpool

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
)

// Pool is a set of worker goroutines that lives until Close.
type Pool struct {
	numWorkers int
	workC      chan func()
	closeOnce  sync.Once
	closed     atomic.Bool
	// mu is held shared while work is queued and exclusively by Close, so
	// workC is never closed under a pending send.
	mu sync.RWMutex
}

// New starts numWorkers workers. If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan func(), numWorkers),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for fn := range p.workC {
		fn()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers after pending work completes. Calling Close more
// than once is safe; a closed pool runs work on the calling goroutine.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.closed.Store(true)
		close(p.workC)
	})
}

// Chunks splits [0, n) into at most parts contiguous ranges whose interior
// boundaries are multiples of align. It returns the boundaries, starting
// with 0 and ending with n.
func Chunks(n, parts, align int) []int {
	if n <= 0 {
		return []int{0}
	}
	if align < 1 {
		align = 1
	}
	if parts < 1 {
		parts = 1
	}
	blocks := (n + align - 1) / align
	parts = min(parts, blocks)
	bounds := make([]int, 0, parts+1)
	bounds = append(bounds, 0)
	for i := 1; i < parts; i++ {
		bounds = append(bounds, blocks*i/parts*align)
	}
	return append(bounds, n)
}

// ForAligned calls fn(start, end) for chunks covering [0, n) and blocks until
// all of them return. Chunk boundaries other than n are multiples of align.
// With one worker, or one chunk, fn runs on the calling goroutine. Close may
// run concurrently; calls that start after it run serially.
func (p *Pool) ForAligned(n, align int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	bounds := Chunks(n, p.numWorkers, align)
	if len(bounds) == 2 {
		fn(0, n)
		return
	}

	p.mu.RLock()
	if p.closed.Load() {
		p.mu.RUnlock()
		fn(0, n)
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(bounds) - 2)
	for i := 1; i < len(bounds)-1; i++ {
		start, end := bounds[i], bounds[i+1]
		p.workC <- func() {
			defer wg.Done()
			fn(start, end)
		}
	}
	p.mu.RUnlock()

	// The caller takes the first chunk itself.
	fn(bounds[0], bounds[1])
	wg.Wait()
}

// For is ForAligned with no alignment constraint.
func (p *Pool) For(n int, fn func(start, end int)) {
	p.ForAligned(n, 1, fn)
}
