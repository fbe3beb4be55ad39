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

// nativeAvailable reports whether this build carries the archsimd kernels.
const nativeAvailable = true

// exp512Consts are broadcast from the pool when the kernel is built. Building
// only happens after the capability gate passed, so no AVX-512 instruction
// runs at package load.
type exp512Consts struct {
	negLog2, negLog2Lo, log2E archsimd.Float32x16
	c                         [5]archsimd.Float32x16
	overflow, underflow       archsimd.Float32x16
	inf, zero                 archsimd.Float32x16
}

func newExp512Consts(p *ConstantPool) *exp512Consts {
	k := &exp512Consts{
		negLog2:   archsimd.BroadcastFloat32x16(-p.Log2),
		negLog2Lo: archsimd.BroadcastFloat32x16(-p.Log2Lo),
		log2E:     archsimd.BroadcastFloat32x16(p.Log2E),
		overflow:  archsimd.BroadcastFloat32x16(p.ExpOverflow),
		underflow: archsimd.BroadcastFloat32x16(p.ExpUnderflow),
		inf:       archsimd.BroadcastInt32x16(int32(p.PosInf)).AsFloat32x16(),
		zero:      archsimd.BroadcastFloat32x16(0),
	}
	for i, c := range p.ExpCoeff {
		k.c[i] = archsimd.BroadcastFloat32x16(c)
	}
	return k
}

// exp_AVX512_F32x16 is expVec on a Float32x16 register.
func exp_AVX512_F32x16(k *exp512Consts, x archsimd.Float32x16) archsimd.Float32x16 {
	n := x.Mul(k.log2E).RoundToEvenScaled(0)
	a := n.MulAdd(k.negLog2, x)
	a = n.MulAdd(k.negLog2Lo, a)

	p := k.c[4].MulAdd(a, k.c[3])
	p = p.MulAdd(a, k.c[2])
	p = p.MulAdd(a, k.c[1])
	p = p.MulAdd(a, k.c[0])
	p = p.MulAdd(a, k.c[0])

	// p * 2^n in one rounding, saturating. (vscalefps)
	r := p.Scale(n)
	r = k.inf.Merge(r, x.Greater(k.overflow))
	r = k.zero.Merge(r, x.Less(k.underflow))
	// NaN lanes compare unequal to themselves and pass through.
	return r.Merge(x, x.Equal(x))
}

// exp2_AVX512_F32x16 runs two independent pipelines with their steps
// interleaved so the FMA latency of one hides behind the other.
func exp2_AVX512_F32x16(k *exp512Consts, x0, x1 archsimd.Float32x16) (archsimd.Float32x16, archsimd.Float32x16) {
	n0 := x0.Mul(k.log2E).RoundToEvenScaled(0)
	n1 := x1.Mul(k.log2E).RoundToEvenScaled(0)
	a0 := n0.MulAdd(k.negLog2, x0)
	a1 := n1.MulAdd(k.negLog2, x1)
	a0 = n0.MulAdd(k.negLog2Lo, a0)
	a1 = n1.MulAdd(k.negLog2Lo, a1)

	p0 := k.c[4].MulAdd(a0, k.c[3])
	p1 := k.c[4].MulAdd(a1, k.c[3])
	p0 = p0.MulAdd(a0, k.c[2])
	p1 = p1.MulAdd(a1, k.c[2])
	p0 = p0.MulAdd(a0, k.c[1])
	p1 = p1.MulAdd(a1, k.c[1])
	p0 = p0.MulAdd(a0, k.c[0])
	p1 = p1.MulAdd(a1, k.c[0])
	p0 = p0.MulAdd(a0, k.c[0])
	p1 = p1.MulAdd(a1, k.c[0])

	r0 := p0.Scale(n0)
	r1 := p1.Scale(n1)
	r0 = k.inf.Merge(r0, x0.Greater(k.overflow))
	r1 = k.inf.Merge(r1, x1.Greater(k.overflow))
	r0 = k.zero.Merge(r0, x0.Less(k.underflow))
	r1 = k.zero.Merge(r1, x1.Less(k.underflow))
	return r0.Merge(x0, x0.Equal(x0)), r1.Merge(x1, x1.Equal(x1))
}

// expAVX512 builds the exp kernel on archsimd registers.
func expAVX512(p *ConstantPool, unroll int) Kernel {
	k := newExp512Consts(p)
	const lanes = 16
	step := unroll * lanes
	return func(dst, src []float32) {
		n := min(len(dst), len(src))
		i := 0
		for ; i+step <= n; i += step {
			u := i
			for ; u+2*lanes <= i+step; u += 2 * lanes {
				x0 := archsimd.LoadFloat32x16Slice(src[u:])
				x1 := archsimd.LoadFloat32x16Slice(src[u+lanes:])
				r0, r1 := exp2_AVX512_F32x16(k, x0, x1)
				r0.StoreSlice(dst[u:])
				r1.StoreSlice(dst[u+lanes:])
			}
			if u < i+step {
				exp_AVX512_F32x16(k, archsimd.LoadFloat32x16Slice(src[u:])).StoreSlice(dst[u:])
			}
		}
		for ; i+lanes <= n; i += lanes {
			exp_AVX512_F32x16(k, archsimd.LoadFloat32x16Slice(src[i:])).StoreSlice(dst[i:])
		}
		if i < n {
			// Masked load and store of the remaining 1..15 lanes.
			x := archsimd.LoadFloat32x16SlicePart(src[i:n])
			exp_AVX512_F32x16(k, x).StoreSlicePart(dst[i:n])
		}
	}
}
