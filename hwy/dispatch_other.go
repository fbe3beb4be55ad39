//go:build !amd64 && !arm64

package hwy

func init() {
	// Non-amd64 architectures have no 512-bit opmask SIMD; kernels can only
	// run on the portable lane type, and only with emulation enabled.
	currentLevel = DispatchScalar
	hasAVX512F = false
	nativeVectors = false
}
