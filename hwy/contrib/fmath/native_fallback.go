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

//go:build !amd64 || !goexperiment.simd

package fmath

// nativeAvailable reports whether this build carries the archsimd kernels.
const nativeAvailable = false

// Without GOEXPERIMENT=simd every image uses the portable kernels; these
// builders exist only to satisfy the shared selection code.

func expAVX512(p *ConstantPool, unroll int) Kernel { return expPortable(p, unroll) }

func logAVX512(p *ConstantPool) Kernel { return logPortable(p) }
