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

package hwy

// TailMask creates a mask with the first 'count' lanes active, computed the
// way an opmask is derived from a remaining element count: (1<<count)-1.
// count is clamped to [0, LanesPerVec].
//
// Example:
//
//	remaining := len(data) % hwy.LanesPerVec
//	if remaining > 0 {
//	    mask := hwy.TailMask[float32](remaining)
//	    v := hwy.MaskLoad(mask, data[len(data)-remaining:])
//	    // ... process tail
//	    hwy.MaskStore(mask, result, output[len(output)-remaining:])
//	}
func TailMask[T Lanes](count int) Mask[T] {
	if count <= 0 {
		return Mask[T]{}
	}
	if count >= LanesPerVec {
		return Mask[T]{bits: 0xFFFF}
	}
	return Mask[T]{bits: uint16(1)<<uint(count) - 1}
}

// MaskLoad loads src[i] for active lanes and zeroes the rest. Inactive lanes
// never touch memory, so src may be shorter than a full vector. (vmovups k{z})
func MaskLoad[T Lanes](mask Mask[T], src []T) Vec[T] {
	var v Vec[T]
	n := min(len(src), LanesPerVec)
	for i := range n {
		if mask.bits&(1<<uint(i)) != 0 {
			v.data[i] = src[i]
		}
	}
	return v
}

// MaskStore stores vector data to a slice only for lanes where the mask is
// true. Inactive lanes of dst are left untouched. (vmovups m{k})
func MaskStore[T Lanes](mask Mask[T], v Vec[T], dst []T) {
	n := min(len(dst), LanesPerVec)
	for i := range n {
		if mask.bits&(1<<uint(i)) != 0 {
			dst[i] = v.data[i]
		}
	}
}

// AlignedSize rounds up size to the next multiple of the vector width.
// This is useful for allocating buffers that will be processed with SIMD.
func AlignedSize(size int) int {
	return ((size + LanesPerVec - 1) / LanesPerVec) * LanesPerVec
}

// IsAligned returns true if size is a multiple of the vector width.
func IsAligned(size int) bool {
	return size%LanesPerVec == 0
}
