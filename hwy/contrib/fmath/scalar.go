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

import stdmath "math"

// fma32 is a float32 fused multiply-add with a single rounding.
func fma32(a, b, c float32) float32 {
	return float32(stdmath.FMA(float64(a), float64(b), float64(c)))
}

// expScalar is the one-lane form of expVec. It yields the same bits.
func (p *ConstantPool) expScalar(x float32) float32 {
	switch {
	case x != x:
		return x
	case x > p.ExpOverflow:
		return stdmath.Float32frombits(p.PosInf)
	case x < p.ExpUnderflow:
		return 0
	}
	t := float32(x * p.Log2E)
	n := float32(stdmath.RoundToEven(float64(t)))
	a := fma32(-n, p.Log2, x)
	a = fma32(-n, p.Log2Lo, a)

	r := fma32(p.ExpCoeff[4], a, p.ExpCoeff[3])
	r = fma32(r, a, p.ExpCoeff[2])
	r = fma32(r, a, p.ExpCoeff[1])
	r = fma32(r, a, p.ExpCoeff[0])
	r = fma32(r, a, p.ExpCoeff[0])
	return float32(stdmath.Ldexp(float64(r), int(n)))
}

// logScalar computes ln(x) with the same decomposition as the log kernel but
// evaluates the full 9-term LogSeries instead of the fitted correction.
func (p *ConstantPool) logScalar(x float32) float32 {
	switch {
	case x != x || x < 0:
		return stdmath.Float32frombits(p.NaN)
	case x == 0:
		return stdmath.Float32frombits(p.NegInf)
	case stdmath.Float32bits(x) == p.PosInf:
		return x
	}

	var c, z float32
	if xm1 := x - 1; float32(stdmath.Abs(float64(xm1))) < p.PreciseBoundary {
		c = xm1
	} else {
		shift := int32(0)
		if x < stdmath.Float32frombits(minNormalBits) {
			x *= stdmath.Float32frombits(subnormalScaleBits)
			shift = subnormalShift
		}
		bits := int32(stdmath.Float32bits(x))
		n := float32((bits-int32(p.ExponentBias))>>23 - shift)
		frac := bits & int32(p.MantissaMask)
		m := stdmath.Float32frombits(uint32(frac | int32(p.ExponentBias)))
		d := frac >> (23 - TableBits)
		c = fma32(m, p.RecipTable[d], -1)
		z = fma32(n, p.Log2, -p.LogRecipTable[d])
	}

	s := p.LogSeries[len(p.LogSeries)-1]
	for k := len(p.LogSeries) - 2; k >= 0; k-- {
		s = fma32(s, c, p.LogSeries[k])
	}
	return fma32(c, s, z)
}
