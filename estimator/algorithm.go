// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package estimator

import (
	"fmt"
)

// Algorithm is a one-shot compression algorithm.
type Algorithm uint8

// Supported algorithms.
const (
	AlgorithmZstd Algorithm = iota + 1
	AlgorithmZlib
	AlgorithmS2
)

// String implements the Stringer interface.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmZstd:
		return "zstd"
	case AlgorithmZlib:
		return "zlib"
	case AlgorithmS2:
		return "s2"
	default:
		return fmt.Sprintf("invalid algorithm %d", a)
	}
}

// ParseAlgorithm returns the algorithm with the given name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "zstd":
		return AlgorithmZstd, nil
	case "zlib":
		return AlgorithmZlib, nil
	case "s2":
		return AlgorithmS2, nil
	default:
		return 0, fmt.Errorf("unknown algorithm (%s)", name)
	}
}
