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

// Command fmathcheck inspects and validates the fmath kernels on this host.
//
// Usage:
//
//	fmathcheck info                      # CPU features, dispatch level, kernel frames
//	fmathcheck pool [--json]             # constant pool contents and offsets
//	fmathcheck accuracy [--config f.toml] [--json]
//	fmathcheck bench [--sizes 16,1024,65536] [--parallel]
//
// Every command accepts --emulate to run the portable kernels on hosts
// without AVX-512F, and --regime/--unroll to change the kernel plan.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
