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

import "sync"

var (
	defaultOnce  sync.Once
	defaultImage *Image
	defaultErr   error
)

// Default returns the process-wide image, building it with New() on the
// first call. The result, including an error, is cached. The default image
// must never be closed.
func Default() (*Image, error) {
	defaultOnce.Do(func() {
		defaultImage, defaultErr = New()
	})
	return defaultImage, defaultErr
}

// MustDefault is like Default but panics if the image cannot be built.
func MustDefault() *Image {
	im, err := Default()
	if err != nil {
		panic(err)
	}
	return im
}

// Exp sets dst[i] = e^src[i] using the default image.
func Exp(dst, src []float32) {
	MustDefault().Exp(dst, src)
}

// Log sets dst[i] = ln(src[i]) using the default image.
func Log(dst, src []float32) {
	MustDefault().Log(dst, src)
}

// ExpScalar computes e^x using the default image.
func ExpScalar(x float32) float32 {
	return MustDefault().ExpScalar(x)
}

// LogScalar computes ln(x) using the default image.
func LogScalar(x float32) float32 {
	return MustDefault().LogScalar(x)
}
