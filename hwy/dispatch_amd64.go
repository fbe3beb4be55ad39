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

//go:build amd64 && !goexperiment.simd

package hwy

import "golang.org/x/sys/cpu"

// Fallback for when GOEXPERIMENT=simd is not enabled.
// The CPU is still probed so the capability gate sees the real hardware, but
// kernels always run on the portable Vec type because archsimd is unavailable.

func init() {
	detectCPUFeatures()
	nativeVectors = false
}

func detectCPUFeatures() {
	// cpu.X86.HasAVX512F already folds in the XCR0 check that the OS saves
	// the opmask and upper ZMM state.
	hasAVX512F = cpu.X86.HasAVX512F

	switch {
	case hasAVX512F:
		currentLevel = DispatchAVX512
	case cpu.X86.HasAVX2:
		currentLevel = DispatchAVX2
	default:
		currentLevel = DispatchSSE2
	}
}
