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

package main

import (
	"math"
	"math/rand/v2"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-highway/fmath/hwy/contrib/fmath"
	"github.com/go-highway/fmath/hwy/contrib/workerpool"
)

type benchRow struct {
	Func      string  `json:"func"`
	Impl      string  `json:"impl"`
	Size      int     `json:"size"`
	Calls     int     `json:"calls"`
	NsPerElem float64 `json:"ns_per_elem"`
}

type benchOptions struct {
	sizes    []int
	duration time.Duration
	parallel bool
	workers  int
}

func (a *app) newBenchCmd() *cobra.Command {
	var o benchOptions
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time the kernels against the math package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := a.image()
			if err != nil {
				return err
			}
			defer a.closeImage(im)

			rows := a.runBench(im, o)
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			a.printer.Fprintf(tw, "func\timpl\tsize\tcalls\tns/elem\n")
			for _, r := range rows {
				a.printer.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\n", r.Func, r.Impl, r.Size, r.Calls, r.NsPerElem)
			}
			return tw.Flush()
		},
	}
	fs := cmd.Flags()
	fs.IntSliceVar(&o.sizes, "sizes", []int{16, 1024, 65536}, "slice lengths to time")
	fs.DurationVar(&o.duration, "duration", 200*time.Millisecond, "minimum time per measurement")
	fs.BoolVar(&o.parallel, "parallel", false, "also time the worker pool entry points")
	fs.IntVar(&o.workers, "workers", runtime.GOMAXPROCS(0), "worker pool size for --parallel")
	return cmd
}

func (a *app) runBench(im *fmath.Image, o benchOptions) []benchRow {
	sizes := lo.Uniq(lo.Filter(o.sizes, func(n, _ int) bool { return n > 0 }))

	var pool *workerpool.Pool
	if o.parallel {
		pool = workerpool.New(o.workers)
		defer pool.Close()
	}

	type impl struct {
		fn, name string
		k        fmath.Kernel
	}
	impls := []impl{
		{"exp", "fmath", im.Exp},
		{"exp", "math", mathKernel(math.Exp)},
		{"log", "fmath", im.Log},
		{"log", "math", mathKernel(math.Log)},
	}
	if pool != nil {
		impls = append(impls,
			impl{"exp", "parallel", func(dst, src []float32) { im.ParallelExp(pool, dst, src) }},
			impl{"log", "parallel", func(dst, src []float32) { im.ParallelLog(pool, dst, src) }},
		)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	var rows []benchRow
	for _, n := range sizes {
		expIn := make([]float32, n)
		logIn := make([]float32, n)
		for i := range expIn {
			expIn[i] = rng.Float32()*160 - 80
			logIn[i] = rng.Float32()*1000 + 1e-3
		}
		dst := make([]float32, n)
		for _, b := range impls {
			src := expIn
			if b.fn == "log" {
				src = logIn
			}
			calls, elapsed := timeKernel(b.k, dst, src, o.duration)
			row := benchRow{
				Func:      b.fn,
				Impl:      b.name,
				Size:      n,
				Calls:     calls,
				NsPerElem: float64(elapsed.Nanoseconds()) / float64(calls*n),
			}
			a.log.Debug("measured", zap.String("func", row.Func), zap.String("impl", row.Impl),
				zap.Int("size", n), zap.Float64("ns_per_elem", row.NsPerElem))
			rows = append(rows, row)
		}
	}
	return rows
}

// timeKernel calls k in doubling batches until at least d has elapsed.
func timeKernel(k fmath.Kernel, dst, src []float32, d time.Duration) (int, time.Duration) {
	calls, batch := 0, 1
	start := time.Now()
	for {
		for range batch {
			k(dst, src)
		}
		calls += batch
		if elapsed := time.Since(start); elapsed >= d {
			return calls, elapsed
		}
		batch *= 2
	}
}

func mathKernel(f func(float64) float64) fmath.Kernel {
	return func(dst, src []float32) {
		for i, x := range src[:min(len(dst), len(src))] {
			dst[i] = float32(f(float64(x)))
		}
	}
}
