package fmath

import (
	"errors"
	stdmath "math"
	"math/rand"
	"sync"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"

	"github.com/go-highway/fmath/hwy"
	"github.com/go-highway/fmath/internal/pagemem"
	"github.com/go-highway/fmath/internal/regalloc"
)

// newWritableImage returns an image that has memory but has not been built.
func newWritableImage(t *testing.T) *Image {
	t.Helper()
	cfg, err := newConfig([]Option{WithEmulation()})
	if err != nil {
		t.Fatal(err)
	}
	mem, err := pagemem.Alloc(imageSize)
	if err != nil {
		t.Fatal(err)
	}
	im := &Image{
		mem:  mem,
		pool: (*ConstantPool)(unsafe.Pointer(&mem.Bytes()[poolOffset])),
		cfg:  cfg,
	}
	t.Cleanup(func() {
		if im.State() != StateReleased {
			_ = mem.Free()
		}
	})
	return im
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if err, ok := r.(error); !ok || !errors.Is(err, target) {
			t.Errorf("panic value = %v, want an error matching %v", r, target)
		}
	}()
	fn()
}

func TestNewIsFrozen(t *testing.T) {
	im := newTestImage(t)
	if got := im.State(); got != StateFrozen {
		t.Fatalf("State() = %v, want %v", got, StateFrozen)
	}
	if im.Native() && !hwy.NativeVectors() {
		t.Error("image uses archsimd kernels although hwy reports no native vectors")
	}

	infos := im.Kernels()
	want := []struct {
		name          string
		offset        int
		unroll, roles int
	}{
		{"exp", PoolSize, 2, 17},
		{"log", PoolSize + 64, 1, 13},
	}
	if len(infos) != len(want) {
		t.Fatalf("Kernels() returned %d entries", len(infos))
	}
	for i, w := range want {
		got := infos[i]
		if got.Name != w.name || got.Offset != w.offset || got.Unroll != w.unroll ||
			got.Frame.NumRoles() != w.roles || got.Lanes != hwy.LanesPerVec {
			t.Errorf("Kernels()[%d] = %+v, want %s@%d unroll=%d roles=%d", i, got, w.name, w.offset, w.unroll, w.roles)
		}
	}
}

func TestCloseOnce(t *testing.T) {
	im, err := New(WithEmulation())
	if err != nil {
		t.Fatal(err)
	}
	if err := im.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := im.State(); got != StateReleased {
		t.Errorf("State() after Close = %v, want %v", got, StateReleased)
	}
	if err := im.Close(); !errors.Is(err, ErrReleased) {
		t.Errorf("second Close = %v, want ErrReleased", err)
	}
}

func TestUseAfterClosePanics(t *testing.T) {
	im, err := New(WithEmulation())
	if err != nil {
		t.Fatal(err)
	}
	if err := im.Close(); err != nil {
		t.Fatal(err)
	}

	buf := []float32{1, 2, 3}
	tests := []struct {
		name string
		fn   func()
	}{
		{"Exp", func() { im.Exp(buf, buf) }},
		{"Log", func() { im.Log(buf, buf) }},
		{"ExpScalar", func() { im.ExpScalar(1) }},
		{"LogScalar", func() { im.LogScalar(1) }},
		{"Pool", func() { im.Pool() }},
		{"Kernels", func() { im.Kernels() }},
		{"ParallelExp", func() { im.ParallelExp(nil, buf, buf) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectPanic(t, ErrReleased, tt.fn)
		})
	}
}

func TestLifecycleOrder(t *testing.T) {
	im := newWritableImage(t)

	expectPanic(t, ErrNotFrozen, func() { im.Exp(nil, nil) })

	if err := im.emit(kindExp); !errors.Is(err, ErrPoolUninitialized) {
		t.Errorf("emit before pool init = %v, want ErrPoolUninitialized", err)
	}
	if err := im.freeze(); !errors.Is(err, ErrPoolUninitialized) {
		t.Errorf("freeze before pool init = %v, want ErrPoolUninitialized", err)
	}

	if err := im.initPool(); err != nil {
		t.Fatal(err)
	}
	if err := im.emit(kindExp); err != nil {
		t.Fatal(err)
	}
	if err := im.freeze(); !errors.Is(err, ErrIncomplete) {
		t.Errorf("freeze without log kernel = %v, want ErrIncomplete", err)
	}
	if err := im.emit(kindLog); err != nil {
		t.Fatal(err)
	}
	if err := im.freeze(); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	if err := im.freeze(); !errors.Is(err, ErrFrozen) {
		t.Errorf("second freeze = %v, want ErrFrozen", err)
	}
	if err := im.initPool(); !errors.Is(err, ErrFrozen) {
		t.Errorf("pool write after freeze = %v, want ErrFrozen", err)
	}
	if err := im.emit(kindLog); !errors.Is(err, ErrFrozen) {
		t.Errorf("emit after freeze = %v, want ErrFrozen", err)
	}

	dst := make([]float32, 1)
	im.Exp(dst, []float32{0})
	if dst[0] != 1 {
		t.Errorf("exp(0) = %v after manual build", dst[0])
	}

	if err := im.Close(); err != nil {
		t.Fatal(err)
	}
	if err := im.initPool(); !errors.Is(err, ErrReleased) {
		t.Errorf("pool write after Close = %v, want ErrReleased", err)
	}
}

func TestCapabilityGate(t *testing.T) {
	t.Setenv(EnvEmulate, "")

	im, err := New()
	if Probe() {
		if err != nil {
			t.Fatalf("New on an AVX-512F host: %v", err)
		}
		im.Close()
		return
	}

	if !errors.Is(err, ErrCapability) {
		t.Fatalf("New without AVX-512F = %v, want ErrCapability", err)
	}
	var capErr *CapabilityError
	if !errors.As(err, &capErr) || capErr.Feature != RequiredFeature {
		t.Errorf("error %v is not a *CapabilityError for %s", err, RequiredFeature)
	}
	if capErr != nil && capErr.Level != hwy.CurrentLevel() {
		t.Errorf("CapabilityError.Level = %v, want %v", capErr.Level, hwy.CurrentLevel())
	}

	im = newTestImage(t)
	if im.Native() {
		t.Error("emulated image claims archsimd kernels")
	}
}

func TestUnrollBudget(t *testing.T) {
	if _, err := New(WithEmulation(), WithUnroll(8)); !errors.Is(err, regalloc.ErrBudget) {
		t.Errorf("unroll 8 = %v, want ErrBudget", err)
	}
	if _, err := New(WithEmulation(), WithUnroll(0)); err == nil {
		t.Error("unroll 0 accepted")
	}
	im := newTestImage(t, WithUnroll(7))
	if got := im.Kernels()[0].Unroll; got != 7 {
		t.Errorf("Unroll = %d, want 7", got)
	}
}

func TestRegimeFrames(t *testing.T) {
	tests := []struct {
		name      string
		regime    regalloc.Regime
		unroll    int
		wantSaved [2]int
	}{
		{"sysv", regalloc.SysV, 2, [2]int{0, 0}},
		{"win64", regalloc.Win64, 2, [2]int{0, 0}},
		{"win64Unroll4", regalloc.Win64, 4, [2]int{1, 0}},
		{"win64Unroll7", regalloc.Win64, 7, [2]int{10, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := newTestImage(t, WithRegime(tt.regime), WithUnroll(tt.unroll))
			if im.Regime() != tt.regime {
				t.Errorf("Regime() = %v, want %v", im.Regime(), tt.regime)
			}
			for i, info := range im.Kernels() {
				if got := len(info.Frame.Saved); got != tt.wantSaved[i] {
					t.Errorf("%s saves %d registers, want %d", info.Name, got, tt.wantSaved[i])
				}
				if info.Frame.ScratchBytes != regalloc.SlotBytes*tt.wantSaved[i] {
					t.Errorf("%s scratch = %d", info.Name, info.Frame.ScratchBytes)
				}
			}
		})
	}
}

func TestRegimeFromEnv(t *testing.T) {
	// Each New must see the environment as it is now, not as it was at the
	// first read.
	t.Setenv(EnvRegime, "sysv")
	if im := newTestImage(t); im.Regime() != regalloc.SysV {
		t.Errorf("Regime() = %v with %s=sysv", im.Regime(), EnvRegime)
	}

	t.Setenv(EnvRegime, "win64")
	im := newTestImage(t)
	if im.Regime() != regalloc.Win64 {
		t.Errorf("Regime() = %v with %s=win64", im.Regime(), EnvRegime)
	}

	t.Setenv(EnvRegime, "vax")
	if _, err := New(WithEmulation()); err == nil {
		t.Errorf("New accepted %s=vax", EnvRegime)
	}
}

func TestConcurrentCalls(t *testing.T) {
	im := newTestImage(t)
	rng := rand.New(rand.NewSource(1))
	src := randomSlice(rng, 4099, 0.001, 80)

	wantExp := make([]float32, len(src))
	wantLog := make([]float32, len(src))
	im.Exp(wantExp, src)
	im.Log(wantLog, src)

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gotExp := make([]float32, len(src))
			gotLog := make([]float32, len(src))
			for range 20 {
				im.Exp(gotExp, src)
				im.Log(gotLog, src)
			}
			if diff := cmp.Diff(wantExp, gotExp); diff != "" {
				errs <- "exp: " + diff
			}
			if diff := cmp.Diff(wantLog, gotLog); diff != "" {
				errs <- "log: " + diff
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestPackageLevel(t *testing.T) {
	a, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if b := MustDefault(); a != b {
		t.Error("Default built two images")
	}

	src := []float32{0, 1, 2}
	dst := make([]float32, 3)
	Exp(dst, src)
	checkExp(t, src, dst)

	Log(dst, []float32{1, stdmath.E, -1})
	if dst[0] != 0 || stdmath.Abs(float64(dst[1])-1) > 1e-6 || !isNaN32(dst[2]) {
		t.Errorf("Log = %v", dst)
	}
	if got := ExpScalar(0); got != 1 {
		t.Errorf("ExpScalar(0) = %v", got)
	}
	if got := LogScalar(1); got != 0 {
		t.Errorf("LogScalar(1) = %v", got)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateWritable: "writable",
		StateFrozen:   "frozen",
		StateReleased: "released",
		State(9):      "State(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int32(s), got, want)
		}
	}
}
