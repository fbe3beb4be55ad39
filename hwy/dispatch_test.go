package hwy

import "testing"

func TestDispatchLevelString(t *testing.T) {
	tests := []struct {
		level DispatchLevel
		want  string
	}{
		{DispatchScalar, "scalar"},
		{DispatchSSE2, "sse2"},
		{DispatchAVX2, "avx2"},
		{DispatchAVX512, "avx512"},
		{DispatchNEON, "neon"},
		{DispatchLevel(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestDetectionConsistent(t *testing.T) {
	if NativeVectors() && !HasAVX512F() {
		t.Error("native vectors enabled without AVX-512F")
	}
	if HasAVX512F() && CurrentLevel() != DispatchAVX512 {
		t.Errorf("AVX-512F detected but level is %s", CurrentLevel())
	}
	if CurrentName() != CurrentLevel().String() {
		t.Errorf("CurrentName %q != level %q", CurrentName(), CurrentLevel())
	}
	if MaxLanes[float32]() != 16 || MaxLanes[int32]() != 16 {
		t.Error("MaxLanes must be 16 for 32-bit lanes")
	}
}

func TestNoSimdEnv(t *testing.T) {
	t.Setenv("HWY_NO_SIMD", "")
	if NoSimdEnv() {
		t.Error("empty HWY_NO_SIMD detected as set")
	}
	t.Setenv("HWY_NO_SIMD", "1")
	if !NoSimdEnv() {
		t.Error("HWY_NO_SIMD=1 not detected")
	}
	t.Setenv("HWY_NO_SIMD", "")
	if NoSimdEnv() {
		t.Error("empty HWY_NO_SIMD detected as set")
	}
}
