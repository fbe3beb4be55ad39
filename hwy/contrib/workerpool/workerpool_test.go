// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestChunks(t *testing.T) {
	tests := []struct {
		name            string
		n, parts, align int
		want            []int
	}{
		{"empty", 0, 4, 32, []int{0}},
		{"oneBlock", 20, 4, 32, []int{0, 20}},
		{"even", 128, 4, 32, []int{0, 32, 64, 96, 128}},
		{"tail", 100, 2, 32, []int{0, 64, 100}},
		{"fewerBlocksThanParts", 70, 8, 32, []int{0, 32, 64, 70}},
		{"unaligned", 10, 3, 1, []int{0, 3, 6, 10}},
		{"zeroAlign", 4, 2, 0, []int{0, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunks(tt.n, tt.parts, tt.align)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Chunks(%d, %d, %d) mismatch (-want +got):\n%s", tt.n, tt.parts, tt.align, diff)
			}
		})
	}
}

func TestForAligned(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	for _, n := range []int{1, 31, 32, 33, 1000, 4099} {
		results := make([]int, n)
		var mu sync.Mutex
		var starts []int
		pool.ForAligned(n, 32, func(start, end int) {
			mu.Lock()
			starts = append(starts, start)
			mu.Unlock()
			for i := start; i < end; i++ {
				results[i] = i * 2
			}
		})

		for i := range results {
			if results[i] != i*2 {
				t.Fatalf("n=%d: results[%d] = %d, want %d", n, i, results[i], i*2)
			}
		}
		for _, s := range starts {
			if s%32 != 0 {
				t.Errorf("n=%d: chunk starts at %d, not a multiple of 32", n, s)
			}
		}
	}
}

func TestFor(t *testing.T) {
	pool := New(3)
	defer pool.Close()

	n := 100
	results := make([]int, n)
	pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})
	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestForAfterClose(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close()

	calls := 0
	pool.ForAligned(1000, 32, func(start, end int) {
		calls++
		if start != 0 || end != 1000 {
			t.Errorf("closed pool chunk = [%d, %d), want [0, 1000)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("closed pool made %d calls, want 1", calls)
	}
}

func TestCloseDuringFor(t *testing.T) {
	const n = 4096
	for round := 0; round < 50; round++ {
		pool := New(4)
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for iter := 0; iter < 20; iter++ {
					out := make([]int, n)
					pool.ForAligned(n, 32, func(start, end int) {
						for i := start; i < end; i++ {
							out[i] = i
						}
					})
					for i, v := range out {
						if v != i {
							t.Errorf("round %d: out[%d] = %d", round, i, v)
							return
						}
					}
				}
			}()
		}
		pool.Close()
		wg.Wait()
	}
}

func TestZeroWork(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	pool.ForAligned(0, 32, func(start, end int) {
		t.Error("fn called for n=0")
	})
}

func BenchmarkForAligned(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	data := make([]float32, 1<<16)
	b.ResetTimer()
	for b.Loop() {
		pool.ForAligned(len(data), 32, func(start, end int) {
			for i := start; i < end; i++ {
				data[i] += 1
			}
		})
	}
}
