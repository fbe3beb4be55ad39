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

	"github.com/go-highway/fmath/hwy"
)

// RequiredFeature names the instruction set every kernel is built for.
const RequiredFeature = "AVX-512F"

// ErrCapability is matched (via errors.Is) by every *CapabilityError.
var ErrCapability = errors.New("fmath: required CPU capability missing")

// CapabilityError reports that the host cannot run the 512-bit kernels.
type CapabilityError struct {
	Feature string
	Level   hwy.DispatchLevel
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("fmath: CPU lacks %s (best available: %s); use WithEmulation or FMATH_EMULATE=1 to run the portable kernels",
		e.Feature, e.Level)
}

// Is makes errors.Is(err, ErrCapability) true.
func (e *CapabilityError) Is(target error) bool {
	return target == ErrCapability
}

// Probe reports whether the host supports AVX-512F with OS-enabled opmask
// and 512-bit state.
func Probe() bool {
	return hwy.HasAVX512F()
}

// gate fails unless the host passes Probe or emulation was requested.
func gate(emulate bool) error {
	if Probe() || emulate {
		return nil
	}
	return &CapabilityError{Feature: RequiredFeature, Level: hwy.CurrentLevel()}
}
