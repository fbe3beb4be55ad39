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
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/go-highway/fmath/hwy"
	"github.com/go-highway/fmath/hwy/contrib/fmath"
	"github.com/go-highway/fmath/internal/regalloc"
)

type kernelReport struct {
	Name         string `json:"name"`
	Offset       int    `json:"offset"`
	Lanes        int    `json:"lanes"`
	Unroll       int    `json:"unroll"`
	Native       bool   `json:"native"`
	Roles        int    `json:"roles"`
	Saved        int    `json:"saved"`
	ScratchBytes int    `json:"scratch_bytes"`
	Frame        string `json:"frame"`
}

type infoReport struct {
	GOOS     string          `json:"goos"`
	GOARCH   string          `json:"goarch"`
	NumCPU   int             `json:"num_cpu"`
	Level    string          `json:"dispatch_level"`
	Features map[string]bool `json:"features"`
	Capable  bool            `json:"avx512f"`
	NoSimd   bool            `json:"hwy_no_simd"`
	Regime   string          `json:"regime"`
	Native   bool            `json:"native"`
	Kernels  []kernelReport  `json:"kernels,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show CPU features, dispatch level and the planned kernel frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.collectInfo()
			if err != nil {
				return err
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			a.printInfo(cmd, r)
			return nil
		},
	}
}

func (a *app) collectInfo() (*infoReport, error) {
	r := &infoReport{
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
		NumCPU: runtime.NumCPU(),
		Level:  hwy.CurrentName(),
		Features: map[string]bool{
			"AVX2":     cpu.X86.HasAVX2,
			"FMA":      cpu.X86.HasFMA,
			"AVX512F":  cpu.X86.HasAVX512F,
			"AVX512DQ": cpu.X86.HasAVX512DQ,
			"AVX512BW": cpu.X86.HasAVX512BW,
			"AVX512VL": cpu.X86.HasAVX512VL,
		},
		Capable: fmath.Probe(),
		NoSimd:  hwy.NoSimdEnv(),
		Regime:  regalloc.HostRegime().String(),
	}

	im, err := a.image()
	if errors.Is(err, fmath.ErrCapability) {
		// Not fatal for info: report what is missing and stop there.
		r.Error = err.Error()
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	defer a.closeImage(im)

	r.Regime = im.Regime().String()
	r.Native = im.Native()
	for _, k := range im.Kernels() {
		r.Kernels = append(r.Kernels, kernelReport{
			Name:         k.Name,
			Offset:       k.Offset,
			Lanes:        k.Lanes,
			Unroll:       k.Unroll,
			Native:       k.Native,
			Roles:        k.Frame.NumRoles(),
			Saved:        len(k.Frame.Saved),
			ScratchBytes: k.Frame.ScratchBytes,
			Frame:        k.Frame.String(),
		})
	}
	return r, nil
}

func (a *app) printInfo(cmd *cobra.Command, r *infoReport) {
	w := cmd.OutOrStdout()
	p := a.printer
	p.Fprintf(w, "GOOS/GOARCH:    %s/%s\n", r.GOOS, r.GOARCH)
	p.Fprintf(w, "NumCPU:         %d\n", r.NumCPU)
	p.Fprintf(w, "Dispatch level: %s\n", r.Level)
	p.Fprintf(w, "HWY_NO_SIMD:    %v\n", r.NoSimd)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "x86 features:")
	for _, name := range []string{"AVX2", "FMA", "AVX512F", "AVX512DQ", "AVX512BW", "AVX512VL"} {
		fmt.Fprintf(w, "  %-9s %v\n", name+":", r.Features[name])
	}
	fmt.Fprintln(w)

	if r.Error != "" {
		fmt.Fprintf(w, "fmath: %s (run with --emulate to use the portable kernels)\n", r.Error)
		return
	}
	fmt.Fprintf(w, "Regime: %s  Native kernels: %v\n", r.Regime, r.Native)
	for _, k := range r.Kernels {
		p.Fprintf(w, "  %-4s offset=%d lanes=%d unroll=%d roles=%d saved=%d scratch=%dB\n",
			k.Name, k.Offset, k.Lanes, k.Unroll, k.Roles, k.Saved, k.ScratchBytes)
		fmt.Fprintf(w, "       %s\n", k.Frame)
	}
}
