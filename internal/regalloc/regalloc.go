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

// Package regalloc plans which 512-bit vector registers a kernel's logical
// roles occupy and how much prologue scratch the calling convention costs.
//
// The Go compiler allocates the registers that actually run, so a Frame is a
// build-time record: it pins the role count of each kernel, proves the roles
// fit the register file, and reports the save/restore traffic a hand-emitted
// routine would carry under each platform ABI.
package regalloc

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// NumRegs is the size of the AVX-512 vector register file (zmm0..zmm31).
const NumRegs = 32

// SlotBytes is the scratch space needed to save one vector register.
const SlotBytes = 64

// ErrBudget is returned when a kernel needs more roles than the register file
// can hold under the selected regime.
var ErrBudget = errors.New("regalloc: register budget exhausted")

// Reg is a vector register number, 0..31.
type Reg uint8

// String returns the assembler name, e.g. "zmm7".
func (r Reg) String() string {
	return fmt.Sprintf("zmm%d", uint8(r))
}

// Regime is a calling-convention variant.
type Regime int

const (
	// SysV is the System V AMD64 ABI: every vector register is caller-saved.
	SysV Regime = iota
	// Win64 is the Microsoft x64 ABI: xmm6..xmm15 are callee-saved, so a
	// routine that clobbers zmm6..zmm15 must save and restore them.
	Win64
)

// String returns the lower-case regime name.
func (r Regime) String() string {
	switch r {
	case SysV:
		return "sysv"
	case Win64:
		return "win64"
	default:
		return "unknown"
	}
}

// ParseRegime parses "sysv" or "win64" (case-insensitive).
func ParseRegime(s string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sysv", "systemv":
		return SysV, nil
	case "win64", "windows":
		return Win64, nil
	}
	return SysV, fmt.Errorf("regalloc: unknown regime %q", s)
}

// HostRegime returns the regime of the platform this binary runs on.
func HostRegime() Regime {
	if runtime.GOOS == "windows" {
		return Win64
	}
	return SysV
}

// pools returns the free and must-preserve registers in allocation order.
func (r Regime) pools() (free, preserve []Reg) {
	if r == Win64 {
		for i := Reg(0); i < 6; i++ {
			free = append(free, i)
		}
		for i := Reg(16); i < NumRegs; i++ {
			free = append(free, i)
		}
		for i := Reg(6); i < 16; i++ {
			preserve = append(preserve, i)
		}
		return free, preserve
	}
	for i := Reg(0); i < NumRegs; i++ {
		free = append(free, i)
	}
	return free, nil
}

// Assignment binds one logical role to a register.
type Assignment struct {
	Role  string
	Reg   Reg
	Saved bool
}

// Allocator hands out registers for one kernel.
type Allocator struct {
	regime   Regime
	free     []Reg
	preserve []Reg
	assigned []Assignment
}

// New returns an allocator with the full register file of the regime.
func New(regime Regime) *Allocator {
	free, preserve := regime.pools()
	return &Allocator{regime: regime, free: free, preserve: preserve}
}

// Alloc assigns role the next free register, falling back to the
// must-preserve pool once the free pool is empty.
func (a *Allocator) Alloc(role string) (Reg, error) {
	var as Assignment
	switch {
	case len(a.free) > 0:
		as = Assignment{Role: role, Reg: a.free[0]}
		a.free = a.free[1:]
	case len(a.preserve) > 0:
		as = Assignment{Role: role, Reg: a.preserve[0], Saved: true}
		a.preserve = a.preserve[1:]
	default:
		return 0, fmt.Errorf("%w: role %q (%d roles already placed, regime %s)",
			ErrBudget, role, len(a.assigned), a.regime)
	}
	a.assigned = append(a.assigned, as)
	return as.Reg, nil
}

// AllocAll assigns every role in order, stopping at the first failure.
func (a *Allocator) AllocAll(roles ...string) error {
	for _, role := range roles {
		if _, err := a.Alloc(role); err != nil {
			return err
		}
	}
	return nil
}

// Frame returns the finished plan. Call it after the last Alloc: the scratch
// size depends on the final tally of saved registers.
func (a *Allocator) Frame() Frame {
	f := Frame{
		Regime:      a.regime,
		Assignments: append([]Assignment(nil), a.assigned...),
	}
	for _, as := range a.assigned {
		if as.Saved {
			f.Saved = append(f.Saved, as.Reg)
		}
	}
	f.ScratchBytes = SlotBytes * len(f.Saved)
	return f
}

// Frame is the register plan of one kernel.
type Frame struct {
	Regime       Regime
	Assignments  []Assignment
	Saved        []Reg
	ScratchBytes int
}

// NumRoles returns how many roles the kernel uses.
func (f Frame) NumRoles() int {
	return len(f.Assignments)
}

// Lookup returns the register assigned to role.
func (f Frame) Lookup(role string) (Reg, bool) {
	for _, as := range f.Assignments {
		if as.Role == role {
			return as.Reg, true
		}
	}
	return 0, false
}

// String renders the frame as "role=reg" pairs, marking saved registers.
func (f Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s roles=%d saved=%d scratch=%dB [", f.Regime, len(f.Assignments), len(f.Saved), f.ScratchBytes)
	for i, as := range f.Assignments {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(as.Role)
		b.WriteByte('=')
		b.WriteString(as.Reg.String())
		if as.Saved {
			b.WriteByte('*')
		}
	}
	b.WriteByte(']')
	return b.String()
}

// ExpRoles lists the roles of the exp kernel: three temporaries per unrolled
// pipeline, then the broadcast constants.
func ExpRoles(unroll int) []string {
	roles := make([]string, 0, 3*unroll+11)
	for u := 0; u < unroll; u++ {
		roles = append(roles, fmt.Sprintf("x%d", u), fmt.Sprintf("n%d", u), fmt.Sprintf("p%d", u))
	}
	return append(roles,
		"log2", "log2_e", "log2_lo",
		"c0", "c1", "c2", "c3", "c4",
		"overflow", "underflow", "inf",
	)
}

// LogRoles lists the roles of the log kernel. It runs a single pipeline.
func LogRoles() []string {
	return []string{
		"x", "n", "c", "z",
		"one", "tbl1", "tbl2", "t", "log2", "boundary",
		"nan", "neg_inf", "pos_inf",
	}
}

// Plan allocates roles under regime and returns the frame.
func Plan(regime Regime, roles []string) (Frame, error) {
	a := New(regime)
	if err := a.AllocAll(roles...); err != nil {
		return Frame{}, err
	}
	return a.Frame(), nil
}
