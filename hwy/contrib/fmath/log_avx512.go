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

//go:build amd64 && goexperiment.simd

package fmath

import "simd/archsimd"

type log512Consts struct {
	one, negOne, zero         archsimd.Float32x16
	log2, boundary            archsimd.Float32x16
	f0, f1, f2                archsimd.Float32x16
	nan, negInf, posInf       archsimd.Float32x16
	minNormal, subScale       archsimd.Float32x16
	subExp                    archsimd.Float32x16
	mant, bias                archsimd.Int32x16

	// The 16-entry tables fill one register each; a lookup is one permute.
	recip, logRecip archsimd.Float32x16
}

func newLog512Consts(p *ConstantPool) *log512Consts {
	return &log512Consts{
		one:       archsimd.BroadcastInt32x16(int32(p.One)).AsFloat32x16(),
		negOne:    archsimd.BroadcastFloat32x16(-1),
		zero:      archsimd.BroadcastFloat32x16(0),
		log2:      archsimd.BroadcastFloat32x16(p.Log2),
		boundary:  archsimd.BroadcastFloat32x16(p.PreciseBoundary),
		f0:        archsimd.BroadcastFloat32x16(p.LogFit[0]),
		f1:        archsimd.BroadcastFloat32x16(p.LogFit[1]),
		f2:        archsimd.BroadcastFloat32x16(p.LogFit[2]),
		nan:       archsimd.BroadcastInt32x16(int32(p.NaN)).AsFloat32x16(),
		negInf:    archsimd.BroadcastInt32x16(int32(p.NegInf)).AsFloat32x16(),
		posInf:    archsimd.BroadcastInt32x16(int32(p.PosInf)).AsFloat32x16(),
		minNormal: archsimd.BroadcastInt32x16(minNormalBits).AsFloat32x16(),
		subScale:  archsimd.BroadcastInt32x16(subnormalScaleBits).AsFloat32x16(),
		subExp:    archsimd.BroadcastFloat32x16(-subnormalShift),
		mant:      archsimd.BroadcastInt32x16(int32(p.MantissaMask)),
		bias:      archsimd.BroadcastInt32x16(int32(p.ExponentBias)),
		recip:     archsimd.LoadFloat32x16Slice(p.RecipTable[:]),
		logRecip:  archsimd.LoadFloat32x16Slice(p.LogRecipTable[:]),
	}
}

// lookup16 reads recip[d] and logRecip[d] per lane. (vpermps)
func (k *log512Consts) lookup16(d archsimd.Int32x16) (archsimd.Float32x16, archsimd.Float32x16) {
	idx := d.AsUint32x16()
	return k.recip.Permute(idx), k.logRecip.Permute(idx)
}

// log_AVX512_F32x16 is logVec on a Float32x16 register.
func log_AVX512_F32x16(k *log512Consts, x archsimd.Float32x16) archsimd.Float32x16 {
	sub := x.Less(k.minNormal).And(x.Greater(k.zero))
	xs := x.Mul(k.subScale).Merge(x, sub)

	bits := xs.AsInt32x16()
	n := bits.Sub(k.bias).ShiftAllRight(23).ConvertToFloat32()
	n = n.Add(k.subExp.Merge(k.zero, sub))
	frac := bits.And(k.mant)
	m := frac.Or(k.bias).AsFloat32x16()

	b, logb := k.lookup16(frac.ShiftAllRight(23 - TableBits))
	c := m.MulAdd(b, k.negOne)
	z := n.MulAdd(k.log2, k.zero.Sub(logb))

	xm1 := x.Sub(k.one)
	absXm1 := xm1.Max(k.zero.Sub(xm1))
	near := absXm1.Less(k.boundary)
	c = xm1.Merge(c, near)
	z = k.zero.Merge(z, near)

	t := k.f2.MulAdd(c, k.f1)
	t = t.MulAdd(c, k.f0)
	t = t.MulAdd(c, k.one)
	r := c.MulAdd(t, z)

	r = r.Merge(k.nan, x.Equal(x))
	r = k.nan.Merge(r, x.Less(k.zero))
	r = k.negInf.Merge(r, x.Equal(k.zero))
	r = k.posInf.Merge(r, x.Equal(k.posInf))
	return r
}

// logAVX512 builds the log kernel on archsimd registers.
func logAVX512(p *ConstantPool) Kernel {
	k := newLog512Consts(p)
	const lanes = 16
	return func(dst, src []float32) {
		n := min(len(dst), len(src))
		i := 0
		for ; i+lanes <= n; i += lanes {
			log_AVX512_F32x16(k, archsimd.LoadFloat32x16Slice(src[i:])).StoreSlice(dst[i:])
		}
		if i < n {
			// Masked load and store of the remaining 1..15 lanes.
			x := archsimd.LoadFloat32x16SlicePart(src[i:n])
			log_AVX512_F32x16(k, x).StoreSlicePart(dst[i:n])
		}
	}
}
