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
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-highway/fmath/hwy"
	"github.com/go-highway/fmath/hwy/contrib/fmath"
	"github.com/go-highway/fmath/hwy/contrib/workerpool"
)

// ErrAccuracy is returned when a sweep or a special value check fails.
var ErrAccuracy = errors.New("accuracy check failed")

type sweepReport struct {
	Func       string  `json:"func"`
	Points     int     `json:"points"`
	Shards     int     `json:"shards"`
	MaxErr     float64 `json:"max_err"`
	WorstInput string  `json:"worst_input"`
	// NaNResults counts inputs with a non-finite error, such as a NaN result
	// where a number was due. They are kept out of MaxErr.
	NaNResults int `json:"nan_results"`
	Tolerance  float64 `json:"tolerance"`
	Pass       bool    `json:"pass"`
}

type specialReport struct {
	Func  string `json:"func"`
	Input string `json:"input"`
	Got   string `json:"got"`
	Want  string `json:"want"`
	Pass  bool   `json:"pass"`
}

type accuracyReport struct {
	Native  bool            `json:"native"`
	Sweeps  []sweepReport   `json:"sweeps"`
	Special []specialReport `json:"special"`
	Pass    bool            `json:"pass"`
}

// shardResult is the worst point found by one shard.
type shardResult struct {
	maxErr float64
	worst  float32
	nans   int
}

// sweepFunc pairs a kernel with its float64 reference and error metric.
type sweepFunc struct {
	name   string
	kernel func(im *fmath.Image) fmath.Kernel
	ref    func(float64) float64
	// errFn is relative error for exp and error scaled by max(1, |want|)
	// for log, whose relative error is unbounded near x = 1.
	errFn func(got float32, want float64) float64
}

var sweepFuncs = map[string]sweepFunc{
	"exp": {
		name:   "exp",
		kernel: func(im *fmath.Image) fmath.Kernel { return im.Exp },
		ref:    math.Exp,
		errFn: func(got float32, want float64) float64 {
			return math.Abs(float64(got)-want) / math.Abs(want)
		},
	},
	"log": {
		name:   "log",
		kernel: func(im *fmath.Image) fmath.Kernel { return im.Log },
		ref:    math.Log,
		errFn: func(got float32, want float64) float64 {
			return math.Abs(float64(got)-want) / math.Max(1, math.Abs(want))
		},
	},
}

func (a *app) newAccuracyCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "accuracy",
		Short: "Sweep exp and log against float64 references and check special values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			im, err := a.image()
			if err != nil {
				return err
			}
			defer a.closeImage(im)

			r, err := a.runAccuracy(cmd.Context(), im, cfg)
			if err != nil {
				return err
			}
			if a.asJSON {
				err = writeJSON(cmd.OutOrStdout(), r)
			} else {
				a.printAccuracy(cmd, r)
			}
			if err != nil {
				return err
			}
			if !r.Pass {
				return ErrAccuracy
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML sweep configuration")
	return cmd
}

func (a *app) runAccuracy(ctx context.Context, im *fmath.Image, cfg Config) (*accuracyReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &accuracyReport{Native: im.Native()}
	for _, s := range []struct {
		fn  sweepFunc
		rng SweepRange
	}{
		{sweepFuncs["exp"], cfg.Exp},
		{sweepFuncs["log"], cfg.Log},
	} {
		sr, err := a.sweep(ctx, im, s.fn, s.rng, cfg.Shards)
		if err != nil {
			return nil, err
		}
		r.Sweeps = append(r.Sweeps, sr)
	}
	r.Special = checkSpecial(im)
	r.Pass = lo.EveryBy(r.Sweeps, func(s sweepReport) bool { return s.Pass }) &&
		lo.EveryBy(r.Special, func(s specialReport) bool { return s.Pass })
	return r, nil
}

// samplePoint returns the i-th of rng.Points inputs.
func samplePoint(rng SweepRange, i int) float32 {
	t := float64(i) / float64(rng.Points-1)
	if rng.LogScale {
		lnMin, lnMax := math.Log(rng.Min), math.Log(rng.Max)
		return float32(math.Exp(lnMin + t*(lnMax-lnMin)))
	}
	return float32(rng.Min + t*(rng.Max-rng.Min))
}

// sweep evaluates fn over rng, one shard per goroutine. Shard boundaries
// are vector aligned so only the last shard runs a masked tail.
func (a *app) sweep(ctx context.Context, im *fmath.Image, fn sweepFunc, rng SweepRange, shards int) (sweepReport, error) {
	bounds := workerpool.Chunks(rng.Points, shards, hwy.LanesPerVec)
	results := make([]shardResult, len(bounds)-1)
	kernel := fn.kernel(im)

	g, ctx := errgroup.WithContext(ctx)
	for s := range results {
		start, end := bounds[s], bounds[s+1]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := make([]float32, end-start)
			for i := range src {
				src[i] = samplePoint(rng, start+i)
			}
			dst := make([]float32, len(src))
			kernel(dst, src)

			var res shardResult
			for i, x := range src {
				e := fn.errFn(dst[i], fn.ref(float64(x)))
				switch {
				case math.IsNaN(e) || math.IsInf(e, 0):
					res.nans++
				case e > res.maxErr:
					res.maxErr, res.worst = e, x
				}
			}
			results[s] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sweepReport{}, fmt.Errorf("%s sweep: %w", fn.name, err)
	}

	worst := lo.MaxBy(results, func(a, b shardResult) bool { return a.maxErr > b.maxErr })
	nans := lo.SumBy(results, func(r shardResult) int { return r.nans })
	a.log.Debug("sweep done",
		zap.String("func", fn.name),
		zap.Int("points", rng.Points),
		zap.Int("shards", len(results)),
		zap.Float64("max_err", worst.maxErr),
		zap.Int("nan_results", nans),
		zap.Float32("worst_input", worst.worst))

	return sweepReport{
		Func:       fn.name,
		Points:     rng.Points,
		Shards:     len(results),
		MaxErr:     worst.maxErr,
		WorstInput: formatFloat(worst.worst),
		NaNResults: nans,
		Tolerance:  rng.Tolerance,
		Pass:       nans == 0 && worst.maxErr <= rng.Tolerance,
	}, nil
}

type specialCase struct {
	fn       string
	kernel   fmath.Kernel
	in, want float32
}

// checkSpecial runs the IEEE edge cases through both kernels.
func checkSpecial(im *fmath.Image) []specialReport {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	exp, log := sweepFuncs["exp"].kernel(im), sweepFuncs["log"].kernel(im)
	cases := []specialCase{
		{"exp", exp, nan, nan},
		{"exp", exp, inf, inf},
		{"exp", exp, -inf, 0},
		{"exp", exp, 0, 1},
		{"exp", exp, 100, inf},
		{"exp", exp, -110, 0},
		{"log", log, nan, nan},
		{"log", log, -1, nan},
		{"log", log, -inf, nan},
		{"log", log, 0, -inf},
		{"log", log, inf, inf},
		{"log", log, 1, 0},
	}
	return lo.Map(cases, func(c specialCase, _ int) specialReport {
		var out [1]float32
		c.kernel(out[:], []float32{c.in})
		got := out[0]
		pass := got == c.want || (got != got && c.want != c.want)
		return specialReport{
			Func:  c.fn,
			Input: formatFloat(c.in),
			Got:   formatFloat(got),
			Want:  formatFloat(c.want),
			Pass:  pass,
		}
	})
}

func (a *app) printAccuracy(cmd *cobra.Command, r *accuracyReport) {
	w := cmd.OutOrStdout()
	p := a.printer
	kind := "portable"
	if r.Native {
		kind = "native"
	}
	fmt.Fprintf(w, "Kernels: %s\n", kind)
	for _, s := range r.Sweeps {
		p.Fprintf(w, "  %-4s %d points in %d shards: max error %.3g at x=%s (tolerance %.3g) %s\n",
			s.Func, s.Points, s.Shards, s.MaxErr, s.WorstInput, s.Tolerance, verdict(s.Pass))
		if s.NaNResults > 0 {
			p.Fprintf(w, "       %d non-finite results\n", s.NaNResults)
		}
	}
	failed := lo.Filter(r.Special, func(s specialReport, _ int) bool { return !s.Pass })
	fmt.Fprintf(w, "  special values: %d/%d %s\n", len(r.Special)-len(failed), len(r.Special), verdict(len(failed) == 0))
	for _, s := range failed {
		fmt.Fprintf(w, "    %s(%s) = %s, want %s\n", s.Func, s.Input, s.Got, s.Want)
	}
}

func verdict(pass bool) string {
	if pass {
		return "ok"
	}
	return "FAIL"
}
