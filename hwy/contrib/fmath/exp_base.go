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

// expConsts are the pool values the exp kernel broadcasts once at build time.
type expConsts struct {
	log2, log2E, log2Lo hwy.Vec[float32]
	c                   [5]hwy.Vec[float32]
	overflow, underflow hwy.Vec[float32]
	inf, zero           hwy.Vec[float32]
}

func newExpConsts(p *ConstantPool) *expConsts {
	k := &expConsts{
		log2:      hwy.Set(p.Log2),
		log2E:     hwy.Set(p.Log2E),
		log2Lo:    hwy.Set(p.Log2Lo),
		overflow:  hwy.Set(p.ExpOverflow),
		underflow: hwy.Set(p.ExpUnderflow),
		inf:       hwy.SetBits(p.PosInf),
		zero:      hwy.Zero[float32](),
	}
	for i, c := range p.ExpCoeff {
		k.c[i] = hwy.Set(c)
	}
	return k
}

// expVec computes e^x for one vector.
//
// x = n*ln2 + a with n = round(x*log2(e)); the reduction subtracts n*ln2 in
// two fused steps so a stays exact to float32 precision. The polynomial
// applies c0 twice, then p*2^n is formed by a single scale instruction.
// Lanes beyond the float32 range are replaced afterwards: no input clamp.
func expVec(k *expConsts, x hwy.Vec[float32]) hwy.Vec[float32] {
	n := hwy.RoundToEven(hwy.Mul(x, k.log2E))
	a := hwy.NegMulAdd(n, k.log2, x)
	a = hwy.NegMulAdd(n, k.log2Lo, a)

	p := hwy.MulAdd(k.c[4], a, k.c[3])
	p = hwy.MulAdd(p, a, k.c[2])
	p = hwy.MulAdd(p, a, k.c[1])
	p = hwy.MulAdd(p, a, k.c[0])
	p = hwy.MulAdd(p, a, k.c[0])

	r := hwy.Scale(p, n)
	r = hwy.Merge(k.inf, r, hwy.Greater(x, k.overflow))
	r = hwy.Merge(k.zero, r, hwy.Less(x, k.underflow))
	return r
}

// expPortable builds the exp kernel on the portable lane type.
func expPortable(p *ConstantPool, unroll int) Kernel {
	k := newExpConsts(p)
	const lanes = hwy.LanesPerVec
	step := unroll * lanes
	return func(dst, src []float32) {
		n := min(len(dst), len(src))
		i := 0
		for ; i+step <= n; i += step {
			for u := i; u < i+step; u += lanes {
				hwy.Store(expVec(k, hwy.Load(src[u:u+lanes])), dst[u:u+lanes])
			}
		}
		for ; i+lanes <= n; i += lanes {
			hwy.Store(expVec(k, hwy.Load(src[i:i+lanes])), dst[i:i+lanes])
		}
		if rem := n - i; rem > 0 {
			mask := hwy.TailMask[float32](rem)
			hwy.MaskStore(mask, expVec(k, hwy.MaskLoad(mask, src[i:n])), dst[i:n])
		}
	}
}
