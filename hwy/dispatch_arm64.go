//go:build arm64

package hwy

import "golang.org/x/sys/cpu"

func init() {
	// ARM64 always has NEON, but NEON is 128-bit and fmath only targets the
	// 512-bit opmask baseline, so the gate reports no AVX-512F here.
	if cpu.ARM64.HasASIMD {
		currentLevel = DispatchNEON
	} else {
		currentLevel = DispatchScalar
	}
	hasAVX512F = false
	nativeVectors = false
}
