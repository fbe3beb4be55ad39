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

//go:build !unix

package pagemem

import (
	"os"
	"unsafe"
)

// Enforced reports whether Protect is backed by the MMU.
const Enforced = false

// PageSize returns the system page size.
func PageSize() int {
	return os.Getpagesize()
}

// mapPages carves a page-aligned window out of an over-allocated heap slice.
func mapPages(size int) ([]byte, error) {
	ps := PageSize()
	raw := make([]byte, size+ps)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) % uintptr(ps)); rem != 0 {
		off = ps - rem
	}
	return raw[off : off+size : off+size], nil
}

func protectPages([]byte, bool) error { return nil }

func unmapPages([]byte) error { return nil }
