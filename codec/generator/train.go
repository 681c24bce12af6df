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

package generator

import (
	"fmt"

	"github.com/klauspost/compress/dict"
)

// Train builds a Zstandard dictionary of at most the given size from the samples.
// The builder fails when the samples do not contain enough material, in which case
// callers are expected to fall back to compressing without a dictionary.
func (g *Generator) Train(samples [][]byte, size int) (*Dictionary, error) {

	if len(samples) == 0 {
		return nil, fmt.Errorf("could not train dictionary: no samples")
	}

	raw, err := dict.BuildZstdDict(samples, dict.Options{
		MaxDictSize: size,
		HashBytes:   g.cfg.HashBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("could not train dictionary: %w", err)
	}

	d := Dictionary{
		Raw:  raw,
		Size: size,
	}

	return &d, nil
}
