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

package fmath

import (
	stdmath "math"
	"unsafe"
)

// TableBits is the number of mantissa bits that index the log tables.
const TableBits = 4

// TableSize is the number of entries in each log table.
const TableSize = 1 << TableBits

// Bit patterns shared by the kernels.
const (
	bitsOne          = 0x3f800000
	bitsOneThird     = 0x3eaaaaab
	bitsNaN          = 0x7fc00000
	bitsNegInf       = 0xff800000
	bitsPosInf       = 0x7f800000
	bitsMantissaMask = 0x007fffff
	bitsExponentBias = 127 << 23

	// exp(x) > MaxFloat32 above this input.
	bitsExpOverflow = 0x42b17218
	// exp(x) < 2^-150 below this input and rounds to zero.
	bitsExpUnderflow = 0xc2cff1b5
)

// expCoeffBits is a degree-4 fit of exp over [-ln2/2, ln2/2] with a maximum
// error of about 1.94e-6. The kernels apply ExpCoeff[0] twice in the Horner
// chain; the values were fitted for exactly that sequence.
var expCoeffBits = [5]uint32{
	0x3f800000,
	0x3effff12,
	0x3e2aaa56,
	0x3d2b89cc,
	0x3c091331,
}

// logFit is the degree-3 correction t(c) = 1 + f0*c + f1*c^2 + f2*c^3 with
// log(1+c) ~= c*t(c) for the |c| < 1/32 left after the table step.
var logFit = [3]float32{-0.49999999, 0.3333955701, -0.25008487}

// ConstantPool holds every constant the kernels read. The layout is fixed so
// each field sits at a constant offset from the start of the pool, and the
// pool itself is placed at offset 0 of an Image.
type ConstantPool struct {
	Log2   float32 // ln 2 rounded to float32
	Log2E  float32 // 1/ln 2
	Log2Lo float32 // ln 2 - Log2

	ExpCoeff     [5]float32
	ExpOverflow  float32
	ExpUnderflow float32

	// LogSeries holds ln(1+c)/c = sum (-c)^k/(k+1) for k = 0..8.
	LogSeries [9]float32
	LogFit    [3]float32
	// PreciseBoundary is the |x-1| below which log uses c = x-1 directly.
	PreciseBoundary float32

	One          uint32
	OneThird     uint32
	NaN          uint32
	NegInf       uint32
	PosInf       uint32
	MantissaMask uint32
	ExponentBias uint32

	_ [2]uint32

	// RecipTable[i] ~= 1/m for mantissas m in bucket i, and
	// LogRecipTable[i] = ln(RecipTable[i]).
	RecipTable    [TableSize]float32
	LogRecipTable [TableSize]float32
}

// PoolSize is the number of bytes a ConstantPool occupies.
const PoolSize = int(unsafe.Sizeof(ConstantPool{}))

// The tables must start on a cache line so a 16-entry table is one 512-bit load.
var (
	_ [0]struct{} = [unsafe.Offsetof(ConstantPool{}.RecipTable) % 64]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(ConstantPool{}.LogRecipTable) % 64]struct{}{}
)

// Init fills every field. It is deterministic: two pools initialized on any
// machine are byte-identical.
func (p *ConstantPool) Init() {
	p.Log2 = float32(stdmath.Ln2)
	p.Log2E = float32(stdmath.Log2E)
	p.Log2Lo = float32(stdmath.Ln2 - float64(float32(stdmath.Ln2)))

	for i, b := range expCoeffBits {
		p.ExpCoeff[i] = stdmath.Float32frombits(b)
	}
	p.ExpOverflow = stdmath.Float32frombits(bitsExpOverflow)
	p.ExpUnderflow = stdmath.Float32frombits(bitsExpUnderflow)

	for k := range p.LogSeries {
		v := float32(1 / float64(k+1))
		if k == 2 {
			v = stdmath.Float32frombits(bitsOneThird)
		}
		if k%2 == 1 {
			v = -v
		}
		p.LogSeries[k] = v
	}
	p.LogFit = logFit
	p.PreciseBoundary = 0.02

	p.One = bitsOne
	p.OneThird = bitsOneThird
	p.NaN = bitsNaN
	p.NegInf = bitsNegInf
	p.PosInf = bitsPosInf
	p.MantissaMask = bitsMantissaMask
	p.ExponentBias = bitsExponentBias

	for i := range TableSize {
		// Midpoint of mantissa bucket i: exponent field at the bias, top
		// TableBits+1 mantissa bits equal to 2i+1.
		u := uint32(bitsExponentBias) | uint32(2*i+1)<<(23-TableBits-1)
		recip := float32(1 / float64(stdmath.Float32frombits(u)))
		p.RecipTable[i] = recip
		p.LogRecipTable[i] = float32(stdmath.Log(float64(recip)))
	}
}

// Initialized reports whether Init has run.
func (p *ConstantPool) Initialized() bool {
	return p.One == bitsOne && p.ExponentBias == bitsExponentBias
}

// Bytes returns the raw bytes of the pool, aliasing its memory.
func (p *ConstantPool) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), PoolSize)
}

// PoolField describes one named field of the pool for diagnostics.
type PoolField struct {
	Name   string
	Offset uintptr
	Values []float32
	// Raw reports whether the field is a bit pattern rather than a number.
	Raw bool
}

// Fields lists the pool contents in layout order.
func (p *ConstantPool) Fields() []PoolField {
	f := func(name string, off uintptr, vs ...float32) PoolField {
		return PoolField{Name: name, Offset: off, Values: vs}
	}
	raw := func(name string, off uintptr, b uint32) PoolField {
		return PoolField{Name: name, Offset: off, Values: []float32{stdmath.Float32frombits(b)}, Raw: true}
	}
	return []PoolField{
		f("Log2", unsafe.Offsetof(p.Log2), p.Log2),
		f("Log2E", unsafe.Offsetof(p.Log2E), p.Log2E),
		f("Log2Lo", unsafe.Offsetof(p.Log2Lo), p.Log2Lo),
		f("ExpCoeff", unsafe.Offsetof(p.ExpCoeff), p.ExpCoeff[:]...),
		f("ExpOverflow", unsafe.Offsetof(p.ExpOverflow), p.ExpOverflow),
		f("ExpUnderflow", unsafe.Offsetof(p.ExpUnderflow), p.ExpUnderflow),
		f("LogSeries", unsafe.Offsetof(p.LogSeries), p.LogSeries[:]...),
		f("LogFit", unsafe.Offsetof(p.LogFit), p.LogFit[:]...),
		f("PreciseBoundary", unsafe.Offsetof(p.PreciseBoundary), p.PreciseBoundary),
		raw("One", unsafe.Offsetof(p.One), p.One),
		raw("OneThird", unsafe.Offsetof(p.OneThird), p.OneThird),
		raw("NaN", unsafe.Offsetof(p.NaN), p.NaN),
		raw("NegInf", unsafe.Offsetof(p.NegInf), p.NegInf),
		raw("PosInf", unsafe.Offsetof(p.PosInf), p.PosInf),
		raw("MantissaMask", unsafe.Offsetof(p.MantissaMask), p.MantissaMask),
		raw("ExponentBias", unsafe.Offsetof(p.ExponentBias), p.ExponentBias),
		f("RecipTable", unsafe.Offsetof(p.RecipTable), p.RecipTable[:]...),
		f("LogRecipTable", unsafe.Offsetof(p.LogRecipTable), p.LogRecipTable[:]...),
	}
}
