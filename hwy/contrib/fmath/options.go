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

	"github.com/xyproto/env/v2"

	"github.com/go-highway/fmath/internal/regalloc"
)

// Environment variables read when an Image is built.
const (
	// EnvEmulate set to a true value ("1", "true", ...) behaves like WithEmulation.
	EnvEmulate = "FMATH_EMULATE"
	// EnvRegime overrides the calling-convention regime ("sysv" or "win64").
	EnvRegime = "FMATH_REGIME"
)

// DefaultUnroll is the number of 16-lane pipelines the exp main loop interleaves.
const DefaultUnroll = 2

type config struct {
	emulate bool
	regime  regalloc.Regime
	unroll  int
}

// Option configures New.
type Option func(*config)

// WithEmulation lets New succeed on hosts without AVX-512F by running the
// same 16-lane algorithm on the portable hwy lane type.
func WithEmulation() Option {
	return func(c *config) { c.emulate = true }
}

// WithRegime selects the calling-convention regime used for frame planning.
func WithRegime(r regalloc.Regime) Option {
	return func(c *config) { c.regime = r }
}

// WithUnroll sets how many 16-lane pipelines one iteration of the exp main
// loop processes. New fails with regalloc.ErrBudget if the roles no longer
// fit the register file.
func WithUnroll(n int) Option {
	return func(c *config) { c.unroll = n }
}

func newConfig(opts []Option) (config, error) {
	// env caches the environment on first use; refresh it so changes made
	// after an earlier New are seen.
	env.Load()
	c := config{
		emulate: env.Bool(EnvEmulate),
		regime:  regalloc.HostRegime(),
		unroll:  DefaultUnroll,
	}
	if s := env.Str(EnvRegime); s != "" {
		r, err := regalloc.ParseRegime(s)
		if err != nil {
			return c, fmt.Errorf("fmath: %s: %w", EnvRegime, err)
		}
		c.regime = r
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.unroll < 1 {
		return c, fmt.Errorf("fmath: unroll must be at least 1, got %d", c.unroll)
	}
	return c, nil
}
