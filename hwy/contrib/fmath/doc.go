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

// Package fmath computes e^x and ln(x) over float32 slices, 16 lanes at a
// time, within a few ulp of the math package.
//
// An Image bundles a constant pool, two kernels built from it and the page of
// memory that holds the pool. New checks that the CPU has AVX-512F, writes
// the pool, builds the exp and log kernels and then makes the memory
// read-only. From then on the kernels are pure functions and can be called
// from any number of goroutines. Close makes the memory writable again and
// releases it.
//
// On amd64 builds with GOEXPERIMENT=simd the kernels use simd/archsimd
// Float32x16 registers. Other builds, and hosts without AVX-512F that opt in
// with WithEmulation or FMATH_EMULATE=1, run the same algorithm on the
// portable hwy.Vec type.
//
// Most callers use the package-level functions, which share one image built
// on first use:
//
//	dst := make([]float32, len(src))
//	fmath.Exp(dst, src)
//	fmath.Log(dst, dst) // in place
//
// # Accuracy
//
// Exp: relative error below 5e-6 for x in [-87, 88]; +Inf above ~88.72,
// 0 below ~-103.97, NaN propagates.
//
// Log: absolute error below 1e-6 near 1; x < 0 and NaN give NaN, ±0 gives
// -Inf, +Inf gives +Inf, subnormals are handled.
package fmath
