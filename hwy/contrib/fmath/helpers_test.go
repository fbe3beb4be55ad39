package fmath

import (
	stdmath "math"
	"math/rand"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// The package-level functions build the default image from the
	// environment; let them run on hosts without AVX-512F too.
	os.Setenv(EnvEmulate, "1")
	os.Exit(m.Run())
}

// newTestImage builds an image that works on any host and is closed when the
// test ends.
func newTestImage(t testing.TB, opts ...Option) *Image {
	t.Helper()
	im, err := New(append([]Option{WithEmulation()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if im.State() == StateFrozen {
			if err := im.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
		}
	})
	return im
}

// testSizes covers the empty call, the masked tail alone, one block, block
// plus tail and the double-block boundaries of the exp loop.
var testSizes = []int{0, 1, 2, 7, 15, 16, 17, 31, 32, 33, 47, 48, 63, 64, 65, 100, 1000}

func randomSlice(rng *rand.Rand, n int, lo, hi float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = lo + rng.Float32()*(hi-lo)
	}
	return out
}

func isNaN32(x float32) bool { return x != x }

func isInf32(x float32, sign int) bool { return stdmath.IsInf(float64(x), sign) }
