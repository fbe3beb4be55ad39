// Package hwy provides the portable 512-bit vector model that fmath kernels
// are written against.
//
// A Vec holds exactly LanesPerVec 32-bit lanes, the shape of one AVX-512
// register. On amd64 builds with GOEXPERIMENT=simd the kernels use
// simd/archsimd Float32x16 directly; everywhere else they run on these types,
// which keep the same lane count, the same masked-tail semantics and the same
// fused multiply-add rounding so both paths agree lane for lane.
//
// Basic usage:
//
//	import "github.com/go-highway/fmath/hwy"
//
//	a := hwy.Load(data1)
//	b := hwy.Load(data2)
//	hwy.Store(hwy.Add(a, b), output)
package hwy

// VectorBytes is the register width targeted by every kernel: 512 bits.
const VectorBytes = 64

// LanesPerVec is the number of 32-bit lanes in one vector.
const LanesPerVec = VectorBytes / 4

// Floats is a constraint for the floating-point lane type.
type Floats interface {
	~float32
}

// Integers is a constraint for 32-bit integer lane types.
type Integers interface {
	~int32 | ~uint32
}

// Lanes is a constraint for all types that can be stored in a 32-bit lane.
type Lanes interface {
	Floats | Integers
}

// Vec is a portable vector handle holding LanesPerVec lanes.
//
// Vec is a value type: passing it copies 64 bytes, exactly like moving a
// register, and no operation allocates.
type Vec[T Lanes] struct {
	data [LanesPerVec]T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return LanesPerVec
}

// Data returns a copy of the lanes.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	out := make([]T, LanesPerVec)
	copy(out, v.data[:])
	return out
}

// Lane returns lane i.
func (v Vec[T]) Lane(i int) T {
	return v.data[i]
}

// Store writes the vector's data to a slice.
// This is the method form of the hwy.Store function.
func (v Vec[T]) Store(dst []T) {
	Store(v, dst)
}

// Mask is a per-lane predicate, one bit per lane, modelled on an AVX-512
// opmask register: bit i set means lane i is active.
//
// Mask instances come from comparisons (Equal, Less, ...) or TailMask.
type Mask[T Lanes] struct {
	bits uint16
}

// MaskFromBits builds a mask from its raw opmask bits.
func MaskFromBits[T Lanes](bits uint16) Mask[T] {
	return Mask[T]{bits: bits}
}

// Bits returns the raw opmask bits.
func (m Mask[T]) Bits() uint16 {
	return m.bits
}

// NumLanes returns the number of lanes in this mask.
func (m Mask[T]) NumLanes() int {
	return LanesPerVec
}

// AllTrue returns true if all lanes in the mask are active.
func (m Mask[T]) AllTrue() bool {
	return m.bits == 0xFFFF
}

// AnyTrue returns true if at least one lane in the mask is active.
func (m Mask[T]) AnyTrue() bool {
	return m.bits != 0
}

// CountTrue returns the number of active lanes in the mask.
func (m Mask[T]) CountTrue() int {
	count := 0
	for b := m.bits; b != 0; b &= b - 1 {
		count++
	}
	return count
}

// GetBit returns whether lane i is active.
func (m Mask[T]) GetBit(i int) bool {
	if i < 0 || i >= LanesPerVec {
		return false
	}
	return m.bits&(1<<uint(i)) != 0
}

// Or returns the union of two masks.
func (m Mask[T]) Or(o Mask[T]) Mask[T] {
	return Mask[T]{bits: m.bits | o.bits}
}

// And returns the intersection of two masks.
func (m Mask[T]) And(o Mask[T]) Mask[T] {
	return Mask[T]{bits: m.bits & o.bits}
}

// Not returns the complement of the mask.
func (m Mask[T]) Not() Mask[T] {
	return Mask[T]{bits: ^m.bits}
}

// AsMask reinterprets a mask for a different lane type of the same width,
// like reusing one opmask register for float and integer compares.
func AsMask[U, T Lanes](m Mask[T]) Mask[U] {
	return Mask[U]{bits: m.bits}
}
