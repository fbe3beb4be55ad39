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

// Package pagemem manages page-granular memory regions that can be switched
// between read-write and read-only.
//
// On unix the region is an anonymous private mapping and Protect really
// revokes write access, so a stray store faults. Elsewhere the region is
// heap memory and the protection calls only track state.
package pagemem

import (
	"errors"
	"fmt"
)

// ErrFreed is returned by any operation on a region after Free.
var ErrFreed = errors.New("pagemem: region already freed")

// Region is a page-aligned block of memory.
type Region struct {
	buf       []byte
	protected bool
	freed     bool
}

// Alloc returns a writable region of at least size bytes, rounded up to whole
// pages. The first byte is page aligned.
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pagemem: invalid size %d", size)
	}
	buf, err := mapPages(RoundUp(size))
	if err != nil {
		return nil, fmt.Errorf("pagemem: allocating %d bytes: %w", size, err)
	}
	return &Region{buf: buf}, nil
}

// RoundUp rounds size up to a multiple of the page size.
func RoundUp(size int) int {
	ps := PageSize()
	return (size + ps - 1) / ps * ps
}

// Bytes returns the region's memory. Writing to it while the region is
// protected faults on unix.
func (r *Region) Bytes() []byte {
	return r.buf
}

// Len returns the region's size in bytes.
func (r *Region) Len() int {
	return len(r.buf)
}

// Protected reports whether the region is currently read-only.
func (r *Region) Protected() bool {
	return r.protected
}

// Protect makes the region read-only.
func (r *Region) Protect() error {
	if r.freed {
		return ErrFreed
	}
	if err := protectPages(r.buf, true); err != nil {
		return fmt.Errorf("pagemem: protect: %w", err)
	}
	r.protected = true
	return nil
}

// Unprotect makes the region writable again.
func (r *Region) Unprotect() error {
	if r.freed {
		return ErrFreed
	}
	if err := protectPages(r.buf, false); err != nil {
		return fmt.Errorf("pagemem: unprotect: %w", err)
	}
	r.protected = false
	return nil
}

// Free releases the region. The memory must not be touched afterwards.
func (r *Region) Free() error {
	if r.freed {
		return ErrFreed
	}
	r.freed = true
	buf := r.buf
	r.buf = nil
	if err := unmapPages(buf); err != nil {
		return fmt.Errorf("pagemem: free: %w", err)
	}
	return nil
}
