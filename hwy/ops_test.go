package hwy

import (
	"math"
	"testing"
)

func iotaF32(start, step float32) []float32 {
	out := make([]float32, LanesPerVec)
	for i := range out {
		out[i] = start + float32(i)*step
	}
	return out
}

func TestLoad(t *testing.T) {
	data := iotaF32(1, 1)
	v := Load(data)

	if v.NumLanes() != 16 {
		t.Fatalf("Load: got %d lanes, want 16", v.NumLanes())
	}

	for i := 0; i < v.NumLanes(); i++ {
		if v.data[i] != data[i] {
			t.Errorf("Load: lane %d: got %v, want %v", i, v.data[i], data[i])
		}
	}
}

func TestLoadShort(t *testing.T) {
	v := Load([]float32{1, 2, 3})
	for i := 3; i < v.NumLanes(); i++ {
		if v.data[i] != 0 {
			t.Errorf("Load short: lane %d: got %v, want 0", i, v.data[i])
		}
	}
}

func TestSet(t *testing.T) {
	v := Set[float32](42.0)

	for i := 0; i < v.NumLanes(); i++ {
		if v.data[i] != 42.0 {
			t.Errorf("Set: lane %d: got %v, want %v", i, v.data[i], 42.0)
		}
	}
}

func TestSetBits(t *testing.T) {
	v := SetBits(0xff800000)
	for i := 0; i < v.NumLanes(); i++ {
		if !math.IsInf(float64(v.data[i]), -1) {
			t.Errorf("SetBits: lane %d: got %v, want -Inf", i, v.data[i])
		}
	}
}

func TestZero(t *testing.T) {
	v := Zero[int32]()

	for i := 0; i < v.NumLanes(); i++ {
		if v.data[i] != 0 {
			t.Errorf("Zero: lane %d: got %v, want 0", i, v.data[i])
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := Set[float32](10.0)
	b := Set[float32](4.0)

	tests := []struct {
		name string
		got  Vec[float32]
		want float32
	}{
		{"Add", Add(a, b), 14},
		{"Sub", Sub(a, b), 6},
		{"Mul", Mul(a, b), 40},
		{"Div", Div(a, b), 2.5},
		{"Neg", Neg(a), -10},
		{"Abs", Abs(Neg(a)), 10},
		{"Min", Min(a, b), 4},
		{"Max", Max(a, b), 10},
		{"MulAdd", MulAdd(a, b, Set[float32](1)), 41},
		{"MulSub", MulSub(a, b, Set[float32](1)), 39},
		{"NegMulAdd", NegMulAdd(a, b, Set[float32](1)), -39},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < tt.got.NumLanes(); i++ {
				if tt.got.data[i] != tt.want {
					t.Errorf("%s: lane %d: got %v, want %v", tt.name, i, tt.got.data[i], tt.want)
				}
			}
		})
	}
}

func TestFMASingleRounding(t *testing.T) {
	// (1+2^-12)^2 - 1 = 2^-11 + 2^-24; a separate multiply would round the
	// 2^-24 term away before the subtraction.
	x := float32(1 + 1.0/4096)
	got := MulSub(Set(x), Set(x), Set[float32](1)).Lane(0)
	want := float32(1.0/2048 + 1.0/16777216)
	if got != want {
		t.Errorf("MulSub: got %g, want %g", got, want)
	}
}

func TestRoundToEven(t *testing.T) {
	in := Load([]float32{0.5, 1.5, 2.5, -0.5, -1.5, 2.4, -2.6, 3})
	want := []float32{0, 2, 2, 0, -2, 2, -3, 3}
	got := RoundToEven(in)
	for i, w := range want {
		if got.data[i] != w {
			t.Errorf("RoundToEven lane %d: got %v, want %v", i, got.data[i], w)
		}
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		name string
		a, b float32
		want float32
	}{
		{"identity", 1.5, 0, 1.5},
		{"positive", 1.5, 3, 12},
		{"negative", 1.5, -1, 0.75},
		{"floor", 1, 2.9, 4},
		{"floorNegative", 1, -0.5, 0.5},
		{"overflow", 1, 128, float32(math.Inf(1))},
		{"overflowHuge", 0.75, 1e30, float32(math.Inf(1))},
		{"underflow", 1, -150, 0},
		{"underflowHuge", 1.25, -1e30, 0},
		{"subnormal", 1, -149, math.Float32frombits(1)},
		{"maxFinite", math.Float32frombits(0x3fffffff), 127, math.MaxFloat32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scale(Set(tt.a), Set(tt.b)).Lane(0)
			if got != tt.want {
				t.Errorf("Scale(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	nan := float32(math.NaN())
	if got := Scale(Set(nan), Set[float32](1)).Lane(0); got == got {
		t.Errorf("Scale(NaN, 1) = %v, want NaN", got)
	}
	if got := Scale(Set[float32](1), Set(nan)).Lane(0); got == got {
		t.Errorf("Scale(1, NaN) = %v, want NaN", got)
	}
}

func TestConvert(t *testing.T) {
	in := Load([]float32{1.5, 2.5, -3.7, 1e10, float32(math.NaN())})
	got := ConvertToInt32(in)
	want := []int32{2, 2, -4, math.MinInt32, math.MinInt32}
	for i, w := range want {
		if got.data[i] != w {
			t.Errorf("ConvertToInt32 lane %d: got %v, want %v", i, got.data[i], w)
		}
	}

	back := ConvertToFloat32(Load([]int32{-127, 0, 128}))
	for i, w := range []float32{-127, 0, 128} {
		if back.data[i] != w {
			t.Errorf("ConvertToFloat32 lane %d: got %v, want %v", i, back.data[i], w)
		}
	}
}

func TestBitcastAndShifts(t *testing.T) {
	v := Set[float32](3.0) // 0x40400000
	bits := AsInt32(v)
	if bits.data[0] != 0x40400000 {
		t.Fatalf("AsInt32: got %#x, want 0x40400000", bits.data[0])
	}

	exp := ShiftRight(Sub(bits, Set[int32](127<<23)), 23)
	if exp.data[0] != 1 {
		t.Errorf("exponent: got %d, want 1", exp.data[0])
	}

	// Arithmetic shift keeps the sign for exponents below the bias.
	half := ShiftRight(Sub(AsInt32(Set[float32](0.25)), Set[int32](127<<23)), 23)
	if half.data[0] != -2 {
		t.Errorf("exponent of 0.25: got %d, want -2", half.data[0])
	}

	m := AsFloat32(Or(And(bits, Set[int32](0x7fffff)), Set[int32](127<<23)))
	if m.data[0] != 1.5 {
		t.Errorf("mantissa: got %v, want 1.5", m.data[0])
	}

	if got := ShiftLeft(Set[uint32](1), 31).data[0]; got != 1<<31 {
		t.Errorf("ShiftLeft: got %#x", got)
	}
	if got := ShiftRight(Set[uint32](1<<31), 31).data[0]; got != 1 {
		t.Errorf("logical ShiftRight: got %#x, want 1", got)
	}
}

func TestTableLookup16(t *testing.T) {
	table := Load(iotaF32(100, 1))
	idx := Load([]int32{0, 15, 3, 16, 31, -1})
	got := TableLookup16(table, idx)
	want := []float32{100, 115, 103, 100, 115, 115}
	for i, w := range want {
		if got.data[i] != w {
			t.Errorf("TableLookup16 lane %d: got %v, want %v", i, got.data[i], w)
		}
	}
}

func TestComparisons(t *testing.T) {
	a := Load(iotaF32(0, 1))
	b := Set[float32](8)

	if got := Less(a, b).CountTrue(); got != 8 {
		t.Errorf("Less: %d lanes, want 8", got)
	}
	if got := Greater(a, b).CountTrue(); got != 7 {
		t.Errorf("Greater: %d lanes, want 7", got)
	}
	eq := Equal(a, b)
	if !eq.GetBit(8) || eq.CountTrue() != 1 {
		t.Errorf("Equal: bits %#x, want only lane 8", eq.Bits())
	}

	nan := float32(math.NaN())
	withNaN := Load([]float32{1, nan, 2, nan})
	if got := IsNaN(withNaN).Bits(); got != 0b1010 {
		t.Errorf("IsNaN: bits %#b, want 0b1010", got)
	}
	// Ordered compares are false for NaN lanes.
	if Equal(withNaN, withNaN).GetBit(1) {
		t.Error("Equal(NaN, NaN) reported true")
	}
}

func TestMerge(t *testing.T) {
	a := Set[float32](1)
	b := Set[float32](2)
	mask := MaskFromBits[float32](0x00FF)
	got := Merge(a, b, mask)
	for i := 0; i < got.NumLanes(); i++ {
		want := float32(2)
		if i < 8 {
			want = 1
		}
		if got.data[i] != want {
			t.Errorf("Merge lane %d: got %v, want %v", i, got.data[i], want)
		}
	}
}

func TestMaskOps(t *testing.T) {
	m := MaskFromBits[float32](0x0F0F)
	if m.CountTrue() != 8 || m.AllTrue() || !m.AnyTrue() {
		t.Errorf("mask predicates wrong for %#x", m.Bits())
	}
	if got := m.Not().Bits(); got != 0xF0F0 {
		t.Errorf("Not: %#x", got)
	}
	if got := m.Or(MaskFromBits[float32](0xF000)).Bits(); got != 0xFF0F {
		t.Errorf("Or: %#x", got)
	}
	if got := m.And(MaskFromBits[float32](0x00FF)).Bits(); got != 0x000F {
		t.Errorf("And: %#x", got)
	}
	if got := AsMask[int32](m).Bits(); got != m.Bits() {
		t.Errorf("AsMask changed bits: %#x", got)
	}
	if m.GetBit(-1) || m.GetBit(16) {
		t.Error("GetBit out of range reported true")
	}
}
