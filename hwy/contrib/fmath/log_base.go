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

import "github.com/go-highway/fmath/hwy"

// logConsts are the pool values the log kernel broadcasts once at build time.
type logConsts struct {
	one, zero, log2, boundary hwy.Vec[float32]
	f0, f1, f2                hwy.Vec[float32]
	nan, negInf, posInf       hwy.Vec[float32]
	recip, logRecip           hwy.Vec[float32]
	minNormal, subScale       hwy.Vec[float32]
	subExp                    hwy.Vec[float32]
	mant, bias                hwy.Vec[int32]
}

func newLogConsts(p *ConstantPool) *logConsts {
	return &logConsts{
		one:       hwy.SetBits(p.One),
		zero:      hwy.Zero[float32](),
		log2:      hwy.Set(p.Log2),
		boundary:  hwy.Set(p.PreciseBoundary),
		f0:        hwy.Set(p.LogFit[0]),
		f1:        hwy.Set(p.LogFit[1]),
		f2:        hwy.Set(p.LogFit[2]),
		nan:       hwy.SetBits(p.NaN),
		negInf:    hwy.SetBits(p.NegInf),
		posInf:    hwy.SetBits(p.PosInf),
		recip:     hwy.Load(p.RecipTable[:]),
		logRecip:  hwy.Load(p.LogRecipTable[:]),
		minNormal: hwy.SetBits(minNormalBits),
		subScale:  hwy.SetBits(subnormalScaleBits),
		subExp:    hwy.Set[float32](-subnormalShift),
		mant:      hwy.Set(int32(p.MantissaMask)),
		bias:      hwy.Set(int32(p.ExponentBias)),
	}
}

const (
	minNormalBits = 0x00800000 // 2^-126
	// Subnormal inputs are multiplied by 2^subnormalShift before decomposition.
	subnormalShift     = 23
	subnormalScaleBits = (127 + subnormalShift) << 23
)

// logVec computes ln(x) for one vector.
//
// x = 2^n * m with 1 <= m < 2. The top TableBits of the mantissa select
// b ~= 1/m and ln(b) from the pool, leaving c = m*b - 1 small enough for a
// degree-3 correction: ln(x) = n*ln2 - ln(b) + ln(1+c). Within
// PreciseBoundary of 1 the table step is skipped and c = x-1.
func logVec(k *logConsts, x hwy.Vec[float32]) hwy.Vec[float32] {
	sub := hwy.Less(x, k.minNormal).And(hwy.Greater(x, k.zero))
	xs := hwy.Merge(hwy.Mul(x, k.subScale), x, sub)

	bits := hwy.AsInt32(xs)
	e := hwy.ShiftRight(hwy.Sub(bits, k.bias), 23)
	n := hwy.Add(hwy.ConvertToFloat32(e), hwy.Merge(k.subExp, k.zero, sub))
	frac := hwy.And(bits, k.mant)
	m := hwy.AsFloat32(hwy.Or(frac, k.bias))
	d := hwy.ShiftRight(frac, 23-TableBits)

	b := hwy.TableLookup16(k.recip, d)
	logb := hwy.TableLookup16(k.logRecip, d)
	c := hwy.MulSub(m, b, k.one)
	z := hwy.MulSub(n, k.log2, logb)

	xm1 := hwy.Sub(x, k.one)
	near := hwy.Less(hwy.Abs(xm1), k.boundary)
	c = hwy.Merge(xm1, c, near)
	z = hwy.Merge(k.zero, z, near)

	t := hwy.MulAdd(k.f2, c, k.f1)
	t = hwy.MulAdd(t, c, k.f0)
	t = hwy.MulAdd(t, c, k.one)
	r := hwy.MulAdd(c, t, z)

	r = hwy.Merge(k.nan, r, hwy.Less(x, k.zero).Or(hwy.IsNaN(x)))
	r = hwy.Merge(k.negInf, r, hwy.Equal(x, k.zero))
	r = hwy.Merge(k.posInf, r, hwy.Equal(x, k.posInf))
	return r
}

// logPortable builds the log kernel on the portable lane type.
func logPortable(p *ConstantPool) Kernel {
	k := newLogConsts(p)
	const lanes = hwy.LanesPerVec
	return func(dst, src []float32) {
		n := min(len(dst), len(src))
		i := 0
		for ; i+lanes <= n; i += lanes {
			hwy.Store(logVec(k, hwy.Load(src[i:i+lanes])), dst[i:i+lanes])
		}
		if rem := n - i; rem > 0 {
			mask := hwy.TailMask[float32](rem)
			hwy.MaskStore(mask, logVec(k, hwy.MaskLoad(mask, src[i:n])), dst[i:n])
		}
	}
}
