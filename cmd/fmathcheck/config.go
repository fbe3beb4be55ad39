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
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
)

// SweepRange is one function's sweep in an accuracy config.
type SweepRange struct {
	Min    float64 `toml:"min"`
	Max    float64 `toml:"max"`
	Points int     `toml:"points"`
	// LogScale spaces the points geometrically instead of linearly.
	LogScale  bool    `toml:"log_scale"`
	Tolerance float64 `toml:"tolerance"`
}

// Config is the accuracy sweep configuration, usually read from a TOML file:
//
//	shards = 8
//
//	[exp]
//	min = -87.0
//	max = 88.0
//	points = 1048576
//	tolerance = 5e-6
//
//	[log]
//	min = 1e-38
//	max = 3e38
//	points = 1048576
//	log_scale = true
//	tolerance = 1e-6
type Config struct {
	Shards int        `toml:"shards"`
	Exp    SweepRange `toml:"exp"`
	Log    SweepRange `toml:"log"`
}

// DefaultConfig sweeps the whole normal output range of exp and the whole
// positive normal input range of log.
func DefaultConfig() Config {
	return Config{
		Shards: 8,
		Exp:    SweepRange{Min: -87, Max: 88, Points: 1 << 20, Tolerance: 5e-6},
		Log:    SweepRange{Min: 1e-38, Max: 3e38, Points: 1 << 20, LogScale: true, Tolerance: 1e-6},
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every sweep is well formed.
func (c Config) Validate() error {
	if c.Shards < 1 {
		return fmt.Errorf("shards must be at least 1, got %d", c.Shards)
	}
	return multierr.Combine(c.Exp.validate("exp"), c.Log.validate("log"))
}

func (r SweepRange) validate(name string) error {
	switch {
	case r.Points < 2:
		return fmt.Errorf("%s: points must be at least 2, got %d", name, r.Points)
	case !(r.Min < r.Max):
		return fmt.Errorf("%s: min %g must be below max %g", name, r.Min, r.Max)
	case r.LogScale && r.Min <= 0:
		return fmt.Errorf("%s: log_scale needs a positive min, got %g", name, r.Min)
	case r.Tolerance <= 0:
		return fmt.Errorf("%s: tolerance must be positive, got %g", name, r.Tolerance)
	}
	return nil
}
