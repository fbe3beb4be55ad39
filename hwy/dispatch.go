package hwy

import (
	"github.com/xyproto/env/v2"
)

// DispatchLevel represents the SIMD instruction set detected for this process.
type DispatchLevel int

const (
	// DispatchScalar indicates no usable SIMD, pure Go lane loops.
	DispatchScalar DispatchLevel = iota

	// DispatchSSE2 indicates SSE2 instructions (x86-64 baseline).
	DispatchSSE2

	// DispatchAVX2 indicates AVX2 instructions (256-bit SIMD).
	DispatchAVX2

	// DispatchAVX512 indicates AVX-512F instructions (512-bit SIMD with opmask
	// registers), the only level fmath kernels target.
	DispatchAVX512

	// DispatchNEON indicates ARM NEON instructions (128-bit SIMD).
	DispatchNEON
)

// String returns a human-readable name for the dispatch level.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// currentLevel is the detected SIMD level for this runtime.
// Set by init() in dispatch_*.go files.
var currentLevel DispatchLevel

// hasAVX512F records the raw CPU probe, independent of HWY_NO_SIMD.
// Set by init() in dispatch_*.go files.
var hasAVX512F bool

// nativeVectors is true when the archsimd kernels may be used: the CPU has
// AVX-512F, the binary was built with GOEXPERIMENT=simd and HWY_NO_SIMD is unset.
var nativeVectors bool

// CurrentLevel returns the SIMD instruction set detected for this process.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentName returns a human-readable name for the current SIMD target.
func CurrentName() string {
	return currentLevel.String()
}

// HasAVX512F reports whether the CPU and OS support AVX-512 Foundation,
// including the opmask registers used for masked tails.
func HasAVX512F() bool {
	return hasAVX512F
}

// NativeVectors reports whether kernels run on archsimd registers rather than
// on the portable Vec type.
func NativeVectors() bool {
	return nativeVectors
}

// NoSimdEnv checks if the HWY_NO_SIMD environment variable is set.
// When set, kernels use the portable lane implementation regardless of CPU
// capabilities. This is useful for testing and debugging.
func NoSimdEnv() bool {
	env.Load()
	return env.Bool("HWY_NO_SIMD")
}

// MaxLanes returns the number of lanes of type T in one vector.
func MaxLanes[T Lanes]() int {
	return LanesPerVec
}
