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
	"fmt"
	"unsafe"

	"github.com/go-highway/fmath/hwy"
	"github.com/go-highway/fmath/internal/regalloc"
)

// Kernel computes dst[i] = f(src[i]) for i < min(len(dst), len(src)), left
// to right. dst and src may be the same slice; partially overlapping slices
// give undefined results.
type Kernel func(dst, src []float32)

type kernelKind uint32

const (
	kindExp kernelKind = iota + 1
	kindLog
)

func (k kernelKind) String() string {
	switch k {
	case kindExp:
		return "exp"
	case kindLog:
		return "log"
	default:
		return fmt.Sprintf("kernel(%d)", uint32(k))
	}
}

// roles returns the register roles of the kernel; only exp unrolls.
func (k kernelKind) roles(unroll int) []string {
	if k == kindExp {
		return regalloc.ExpRoles(unroll)
	}
	return regalloc.LogRoles()
}

const recordMagic = 0x464d4b31 // "FMK1"

// record is the fixed-size header stored in the image for each kernel.
type record struct {
	Magic        uint32
	Kind         uint32
	Lanes        uint32
	Unroll       uint32
	Roles        uint32
	Saved        uint32
	ScratchBytes uint32
	PoolOffset   uint32
	_            [8]uint32
}

const recordSize = int(unsafe.Sizeof(record{}))

var _ [0]struct{} = [recordSize - 64]struct{}{}

// Image layout: the pool at offset 0, then one record per kernel.
const (
	poolOffset      = 0
	expRecordOffset = poolOffset + PoolSize
	logRecordOffset = expRecordOffset + recordSize
	imageSize       = logRecordOffset + recordSize
)

type kernel struct {
	kind   kernelKind
	unroll int
	frame  regalloc.Frame
	fn     Kernel
}

// KernelInfo describes one built kernel.
type KernelInfo struct {
	Name string
	// Offset is the byte offset of the kernel's record inside the image.
	Offset int
	Lanes  int
	Unroll int
	// Native is true for archsimd kernels, false for the portable lane type.
	Native bool
	Frame  regalloc.Frame
}

// buildKernel plans the register frame of kind and constructs its function
// from the pool. The pool must already be initialized.
func buildKernel(kind kernelKind, p *ConstantPool, cfg config, native bool) (*kernel, error) {
	unroll := 1
	if kind == kindExp {
		unroll = cfg.unroll
	}
	frame, err := regalloc.Plan(cfg.regime, kind.roles(unroll))
	if err != nil {
		return nil, fmt.Errorf("fmath: planning %s kernel: %w", kind, err)
	}

	k := &kernel{kind: kind, unroll: unroll, frame: frame}
	switch {
	case kind == kindExp && native:
		k.fn = expAVX512(p, unroll)
	case kind == kindExp:
		k.fn = expPortable(p, unroll)
	case native:
		k.fn = logAVX512(p)
	default:
		k.fn = logPortable(p)
	}
	return k, nil
}

// writeRecord stores the kernel header into buf.
func (k *kernel) writeRecord(buf []byte) {
	r := (*record)(unsafe.Pointer(&buf[0]))
	*r = record{
		Magic:        recordMagic,
		Kind:         uint32(k.kind),
		Lanes:        hwy.LanesPerVec,
		Unroll:       uint32(k.unroll),
		Roles:        uint32(k.frame.NumRoles()),
		Saved:        uint32(len(k.frame.Saved)),
		ScratchBytes: uint32(k.frame.ScratchBytes),
		PoolOffset:   poolOffset,
	}
}

func readRecord(buf []byte) record {
	return *(*record)(unsafe.Pointer(&buf[0]))
}
