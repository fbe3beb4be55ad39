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

//go:build amd64 && goexperiment.simd

package hwy

import (
	"simd/archsimd"

	"golang.org/x/sys/cpu"
)

func init() {
	detectCPUFeatures()

	// Check if SIMD is disabled via environment variable
	nativeVectors = hasAVX512F && !NoSimdEnv()
}

func detectCPUFeatures() {
	// Use actual CPU detection from archsimd package, cross-checked against
	// x/sys/cpu so both agree on the opmask-capable baseline.
	hasAVX512F = archsimd.X86.AVX512() && cpu.X86.HasAVX512F

	switch {
	case hasAVX512F:
		currentLevel = DispatchAVX512
	case archsimd.X86.AVX2():
		currentLevel = DispatchAVX2
	default:
		// SSE2 is baseline for amd64
		currentLevel = DispatchSSE2
	}
}
