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

package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/go-highway/fmath/hwy/contrib/fmath"
)

type poolField struct {
	Name   string   `json:"name"`
	Offset uintptr  `json:"offset"`
	Values []string `json:"values"`
	Bits   []string `json:"bits"`
	Raw    bool     `json:"raw,omitempty"`
}

type poolReport struct {
	Size   int         `json:"size"`
	Fields []poolField `json:"fields"`
}

func (a *app) newPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool",
		Short: "Dump the constant pool layout and contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The pool does not depend on the CPU, so no image is needed.
			var p fmath.ConstantPool
			p.Init()
			r := buildPoolReport(&p)
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			w := cmd.OutOrStdout()
			a.printer.Fprintf(w, "ConstantPool: %d bytes\n", r.Size)
			for _, f := range r.Fields {
				vals := f.Values
				if f.Raw {
					vals = f.Bits
				}
				fmt.Fprintf(w, "  %3d  %-16s %s\n", f.Offset, f.Name, strings.Join(vals, " "))
			}
			return nil
		},
	}
}

func buildPoolReport(p *fmath.ConstantPool) poolReport {
	return poolReport{
		Size: fmath.PoolSize,
		Fields: lo.Map(p.Fields(), func(f fmath.PoolField, _ int) poolField {
			return poolField{
				Name:   f.Name,
				Offset: f.Offset,
				Values: lo.Map(f.Values, func(v float32, _ int) string { return formatFloat(v) }),
				Bits: lo.Map(f.Values, func(v float32, _ int) string {
					return fmt.Sprintf("0x%08x", math.Float32bits(v))
				}),
				Raw: f.Raw,
			}
		}),
	}
}
