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

package hwy

import "math"

// This file provides pure Go implementations of the 512-bit operations the
// fmath kernels use. Each function mirrors one AVX-512 instruction (noted in
// its comment) so the portable kernels and the archsimd kernels follow the
// same sequence of roundings.

// Load creates a vector by loading the first LanesPerVec elements of src.
// Missing elements (short src) are zero. (vmovups)
func Load[T Lanes](src []T) Vec[T] {
	var v Vec[T]
	copy(v.data[:], src)
	return v
}

// Store writes a vector's data to a slice, stopping at len(dst). (vmovups)
func Store[T Lanes](v Vec[T], dst []T) {
	copy(dst, v.data[:])
}

// Set creates a vector with all lanes set to the same value. (vbroadcastss)
func Set[T Lanes](value T) Vec[T] {
	var v Vec[T]
	for i := range v.data {
		v.data[i] = value
	}
	return v
}

// SetBits broadcasts an IEEE-754 bit pattern into every float32 lane.
func SetBits(bits uint32) Vec[float32] {
	return Set(math.Float32frombits(bits))
}

// Zero creates a vector with all lanes set to zero.
func Zero[T Lanes]() Vec[T] {
	return Vec[T]{}
}

// Add performs element-wise addition. (vaddps / vpaddd)
func Add[T Lanes](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		a.data[i] += b.data[i]
	}
	return a
}

// Sub performs element-wise subtraction. (vsubps / vpsubd)
func Sub[T Lanes](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		a.data[i] -= b.data[i]
	}
	return a
}

// Mul performs element-wise multiplication. (vmulps / vpmulld)
func Mul[T Lanes](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		a.data[i] *= b.data[i]
	}
	return a
}

// Div performs element-wise division. (vdivps)
func Div[T Floats](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		a.data[i] /= b.data[i]
	}
	return a
}

// Neg negates each lane.
func Neg[T Floats](v Vec[T]) Vec[T] {
	for i := range v.data {
		v.data[i] = -v.data[i]
	}
	return v
}

// Abs computes the absolute value of each lane by clearing the sign bit.
func Abs[T Floats](v Vec[T]) Vec[T] {
	for i := range v.data {
		v.data[i] = T(math.Abs(float64(v.data[i])))
	}
	return v
}

// Min returns the element-wise minimum. (vminps)
func Min[T Lanes](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		if b.data[i] < a.data[i] {
			a.data[i] = b.data[i]
		}
	}
	return a
}

// Max returns the element-wise maximum. (vmaxps)
func Max[T Lanes](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		if b.data[i] > a.data[i] {
			a.data[i] = b.data[i]
		}
	}
	return a
}

// FMA performs fused multiply-add a*b + c with a single rounding. (vfmadd213ps)
func FMA[T Floats](a, b, c Vec[T]) Vec[T] {
	for i := range a.data {
		a.data[i] = T(math.FMA(float64(a.data[i]), float64(b.data[i]), float64(c.data[i])))
	}
	return a
}

// MulAdd performs fused multiply-add: a*b + c.
// This is an alias for FMA with the common a.MulAdd(b, c) semantics.
func MulAdd[T Floats](a, b, c Vec[T]) Vec[T] {
	return FMA(a, b, c)
}

// MulSub performs fused multiply-subtract: a*b - c. (vfmsub213ps)
func MulSub[T Floats](a, b, c Vec[T]) Vec[T] {
	return FMA(a, b, Neg(c))
}

// NegMulAdd performs fused negated multiply-add: -(a*b) + c. (vfnmadd213ps)
func NegMulAdd[T Floats](a, b, c Vec[T]) Vec[T] {
	return FMA(Neg(a), b, c)
}

// RoundToEven rounds to the nearest integer, ties to even. (vrndscaleps imm=0)
func RoundToEven[T Floats](v Vec[T]) Vec[T] {
	for i := range v.data {
		v.data[i] = T(math.RoundToEven(float64(v.data[i])))
	}
	return v
}

// Scale computes a * 2^floor(b) per lane with one rounding, saturating to
// zero or infinity. (vscalefps)
//
// NaN in either operand yields NaN.
func Scale(a, b Vec[float32]) Vec[float32] {
	for i := range a.data {
		x, e := float64(a.data[i]), float64(b.data[i])
		if math.IsNaN(x) || math.IsNaN(e) {
			a.data[i] = float32(math.NaN())
			continue
		}
		// Beyond +-400 every finite float32 mantissa has already saturated, and
		// x*2^k stays exact in float64 inside that window.
		k := math.Floor(math.Max(-400, math.Min(400, e)))
		a.data[i] = float32(math.Ldexp(x, int(k)))
	}
	return a
}

// ConvertToInt32 converts float lanes to int32, rounding to nearest even.
// Out-of-range and NaN lanes produce math.MinInt32, the x86 "integer
// indefinite" value. (vcvtps2dq)
func ConvertToInt32(v Vec[float32]) Vec[int32] {
	var out Vec[int32]
	for i, x := range v.data {
		r := math.RoundToEven(float64(x))
		if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
			out.data[i] = math.MinInt32
			continue
		}
		out.data[i] = int32(r)
	}
	return out
}

// ConvertToFloat32 converts int32 lanes to float32. (vcvtdq2ps)
func ConvertToFloat32(v Vec[int32]) Vec[float32] {
	var out Vec[float32]
	for i, x := range v.data {
		out.data[i] = float32(x)
	}
	return out
}

// AsInt32 reinterprets a float32 vector as int32 (bit cast).
func AsInt32(v Vec[float32]) Vec[int32] {
	var out Vec[int32]
	for i, x := range v.data {
		out.data[i] = int32(math.Float32bits(x))
	}
	return out
}

// AsFloat32 reinterprets an int32 vector as float32 (bit cast).
func AsFloat32(v Vec[int32]) Vec[float32] {
	var out Vec[float32]
	for i, x := range v.data {
		out.data[i] = math.Float32frombits(uint32(x))
	}
	return out
}

// And performs element-wise bitwise AND. (vpandd)
func And[T Integers](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		a.data[i] &= b.data[i]
	}
	return a
}

// Or performs element-wise bitwise OR. (vpord)
func Or[T Integers](a, b Vec[T]) Vec[T] {
	for i := range a.data {
		a.data[i] |= b.data[i]
	}
	return a
}

// ShiftLeft shifts each lane left by bits. (vpslld)
func ShiftLeft[T Integers](v Vec[T], bits int) Vec[T] {
	for i := range v.data {
		v.data[i] <<= uint(bits)
	}
	return v
}

// ShiftRight shifts each lane right by bits: arithmetic for int32 (vpsrad),
// logical for uint32 (vpsrld).
func ShiftRight[T Integers](v Vec[T], bits int) Vec[T] {
	for i := range v.data {
		v.data[i] >>= uint(bits)
	}
	return v
}

// TableLookup16 selects table[idx&15] per lane, a full 16-lane permute. (vpermps)
func TableLookup16(table Vec[float32], idx Vec[int32]) Vec[float32] {
	var out Vec[float32]
	for i, j := range idx.data {
		out.data[i] = table.data[j&(LanesPerVec-1)]
	}
	return out
}

// Equal performs element-wise equality comparison. (vcmpps EQ_OQ)
func Equal[T Lanes](a, b Vec[T]) Mask[T] {
	var bits uint16
	for i := range a.data {
		if a.data[i] == b.data[i] {
			bits |= 1 << uint(i)
		}
	}
	return Mask[T]{bits: bits}
}

// Less performs element-wise less-than comparison. (vcmpps LT_OQ)
func Less[T Lanes](a, b Vec[T]) Mask[T] {
	var bits uint16
	for i := range a.data {
		if a.data[i] < b.data[i] {
			bits |= 1 << uint(i)
		}
	}
	return Mask[T]{bits: bits}
}

// Greater performs element-wise greater-than comparison. (vcmpps GT_OQ)
func Greater[T Lanes](a, b Vec[T]) Mask[T] {
	return Less(b, a)
}

// IsNaN returns a mask of the lanes holding NaN. (vcmpps UNORD_Q)
func IsNaN[T Floats](v Vec[T]) Mask[T] {
	var bits uint16
	for i, x := range v.data {
		if x != x {
			bits |= 1 << uint(i)
		}
	}
	return Mask[T]{bits: bits}
}

// IfThenElse selects a where mask is true, b otherwise. (vblendmps)
func IfThenElse[T Lanes](mask Mask[T], a, b Vec[T]) Vec[T] {
	for i := range b.data {
		if mask.bits&(1<<uint(i)) != 0 {
			b.data[i] = a.data[i]
		}
	}
	return b
}

// Merge selects elements from a where mask is true, from b otherwise.
// This is equivalent to IfThenElse(mask, a, b) and matches archsimd's
// a.Merge(b, mask) argument order.
func Merge[T Lanes](a, b Vec[T], mask Mask[T]) Vec[T] {
	return IfThenElse(mask, a, b)
}
