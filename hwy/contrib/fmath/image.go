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
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/go-highway/fmath/hwy"
	"github.com/go-highway/fmath/internal/pagemem"
	"github.com/go-highway/fmath/internal/regalloc"
)

// Lifecycle errors.
var (
	// ErrFrozen is returned for writes to an image that is already frozen.
	ErrFrozen = errors.New("fmath: image is frozen")
	// ErrNotFrozen is the panic value of a kernel called before its image was frozen.
	ErrNotFrozen = errors.New("fmath: image is not frozen")
	// ErrReleased is returned (or panicked) for any use after Close.
	ErrReleased = errors.New("fmath: image has been released")
	// ErrPoolUninitialized is returned when kernels are built or the image is
	// frozen before the constant pool was written.
	ErrPoolUninitialized = errors.New("fmath: constant pool not initialized")
	// ErrIncomplete is returned when freezing an image that lacks a kernel.
	ErrIncomplete = errors.New("fmath: image is missing a kernel")
)

// State is the lifecycle state of an Image.
type State int32

const (
	// StateWritable is the initial state, and the state during teardown.
	StateWritable State = iota
	// StateFrozen means the image is read-only and its kernels are callable.
	StateFrozen
	// StateReleased is terminal: the memory has been returned to the OS.
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateWritable:
		return "writable"
	case StateFrozen:
		return "frozen"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Image owns a block of page-protected memory holding the constant pool and
// the kernel records, plus the kernels built from that pool.
//
// Once New returns, the image is frozen: every method except Close is safe
// for concurrent use without locking. Calling a kernel after Close panics.
type Image struct {
	state  atomic.Int32
	mem    *pagemem.Region
	pool   *ConstantPool
	cfg    config
	native bool

	exp, log *kernel
}

// New gates on the CPU, builds both kernels and freezes the image.
//
// It fails with a *CapabilityError when the host lacks AVX-512F unless
// WithEmulation (or FMATH_EMULATE) allows the portable kernels. On any error
// the memory has already been released.
func New(opts ...Option) (*Image, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := gate(cfg.emulate); err != nil {
		return nil, err
	}

	mem, err := pagemem.Alloc(imageSize)
	if err != nil {
		return nil, fmt.Errorf("fmath: %w", err)
	}
	im := &Image{
		mem:    mem,
		pool:   (*ConstantPool)(unsafe.Pointer(&mem.Bytes()[poolOffset])),
		cfg:    cfg,
		native: nativeAvailable && hwy.NativeVectors(),
	}
	if err := im.build(); err != nil {
		return nil, multierr.Append(err, mem.Free())
	}
	return im, nil
}

func (im *Image) build() error {
	if err := im.initPool(); err != nil {
		return err
	}
	if err := im.emit(kindExp); err != nil {
		return err
	}
	if err := im.emit(kindLog); err != nil {
		return err
	}
	return im.freeze()
}

// State returns the current lifecycle state.
func (im *Image) State() State {
	return State(im.state.Load())
}

func (im *Image) writable(op string) error {
	switch s := im.State(); s {
	case StateWritable:
		return nil
	case StateReleased:
		return fmt.Errorf("fmath: %s: %w", op, ErrReleased)
	default:
		return fmt.Errorf("fmath: %s: %w", op, ErrFrozen)
	}
}

func (im *Image) initPool() error {
	if err := im.writable("init pool"); err != nil {
		return err
	}
	im.pool.Init()
	return nil
}

func (im *Image) emit(kind kernelKind) error {
	if err := im.writable("emit " + kind.String()); err != nil {
		return err
	}
	if !im.pool.Initialized() {
		return fmt.Errorf("fmath: emit %s: %w", kind, ErrPoolUninitialized)
	}
	k, err := buildKernel(kind, im.pool, im.cfg, im.native)
	if err != nil {
		return err
	}
	off := expRecordOffset
	if kind == kindLog {
		off = logRecordOffset
	}
	k.writeRecord(im.mem.Bytes()[off : off+recordSize])
	if kind == kindExp {
		im.exp = k
	} else {
		im.log = k
	}
	return nil
}

func (im *Image) freeze() error {
	if err := im.writable("freeze"); err != nil {
		return err
	}
	if !im.pool.Initialized() {
		return fmt.Errorf("fmath: freeze: %w", ErrPoolUninitialized)
	}
	if im.exp == nil || im.log == nil {
		return fmt.Errorf("fmath: freeze: %w", ErrIncomplete)
	}
	if err := im.mem.Protect(); err != nil {
		return fmt.Errorf("fmath: freeze: %w", err)
	}
	im.state.Store(int32(StateFrozen))
	return nil
}

// Close unfreezes and releases the image. It may be called once; later calls
// return ErrReleased. Kernels must not be running or called afterwards.
func (im *Image) Close() error {
	if !im.state.CAS(int32(StateFrozen), int32(StateWritable)) {
		return fmt.Errorf("fmath: close: %w", ErrReleased)
	}
	err := im.mem.Unprotect()
	err = multierr.Append(err, im.mem.Free())
	im.pool = nil
	im.state.Store(int32(StateReleased))
	if err != nil {
		return fmt.Errorf("fmath: close: %w", err)
	}
	return nil
}

// mustBeFrozen panics unless the kernels may run.
func (im *Image) mustBeFrozen() {
	switch im.State() {
	case StateFrozen:
	case StateReleased:
		panic(fmt.Errorf("fmath: kernel called after Close: %w", ErrReleased))
	default:
		panic(fmt.Errorf("fmath: kernel called on an unfrozen image: %w", ErrNotFrozen))
	}
}

// Exp sets dst[i] = e^src[i] for i < min(len(dst), len(src)).
//
// The relative error is below 5e-6 over [-87, 88]. Inputs above ~88.72 give
// +Inf, inputs below ~-103.97 give 0, NaN stays NaN.
func (im *Image) Exp(dst, src []float32) {
	im.mustBeFrozen()
	im.exp.fn(dst, src)
}

// Log sets dst[i] = ln(src[i]) for i < min(len(dst), len(src)).
//
// Negative inputs and NaN give NaN, zero gives -Inf, +Inf gives +Inf.
func (im *Image) Log(dst, src []float32) {
	im.mustBeFrozen()
	im.log.fn(dst, src)
}

// ExpScalar computes e^x for one value from the same pool and the same
// sequence of operations as Exp.
func (im *Image) ExpScalar(x float32) float32 {
	im.mustBeFrozen()
	return im.pool.expScalar(x)
}

// LogScalar computes ln(x) for one value. It shares the table step with Log
// but evaluates the 9-term series; it is meant for reference checks.
func (im *Image) LogScalar(x float32) float32 {
	im.mustBeFrozen()
	return im.pool.logScalar(x)
}

// Pool returns the image's constant pool. The pool is read-only: on unix a
// write to it faults.
func (im *Image) Pool() *ConstantPool {
	im.mustBeFrozen()
	return im.pool
}

// Native reports whether the kernels run on archsimd registers.
func (im *Image) Native() bool {
	return im.native
}

// Regime returns the calling-convention regime the frames were planned for.
func (im *Image) Regime() regalloc.Regime {
	return im.cfg.regime
}

// Kernels describes the exp and log kernels, reading each header back from
// the image.
func (im *Image) Kernels() []KernelInfo {
	im.mustBeFrozen()
	infos := make([]KernelInfo, 0, 2)
	for _, k := range []struct {
		k   *kernel
		off int
	}{{im.exp, expRecordOffset}, {im.log, logRecordOffset}} {
		r := readRecord(im.mem.Bytes()[k.off : k.off+recordSize])
		infos = append(infos, KernelInfo{
			Name:   kernelKind(r.Kind).String(),
			Offset: k.off,
			Lanes:  int(r.Lanes),
			Unroll: int(r.Unroll),
			Native: im.native,
			Frame:  k.k.frame,
		})
	}
	return infos
}
