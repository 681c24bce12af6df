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
	"time"

	"github.com/klauspost/compress/zstd"
)

// Benchmark compresses the given samples using the given dictionary, and calculates
// its compression rate and the time it took to compress the given samples. It then
// sets that information directly into the given dictionary pointer.
func (g *Generator) Benchmark(dict *Dictionary, samples [][]byte) error {

	if len(samples) == 0 {
		return fmt.Errorf("could not benchmark dictionary: no samples")
	}

	// When given an empty dictionary, we're testing the baseline compressing, so we don't want to
	// use a dictionary. Otherwise, use the given dictionary.
	level := zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(g.cfg.Level))
	var compressor *zstd.Encoder
	var err error
	if len(dict.Raw) == 0 {
		compressor, err = zstd.NewWriter(nil, level)
		if err != nil {
			return fmt.Errorf("could not create baseline zstd writer: %w", err)
		}
	} else {
		compressor, err = zstd.NewWriter(nil, level, zstd.WithEncoderDict(dict.Raw))
		if err != nil {
			return fmt.Errorf("could not create zstd writer with dictionary: %w", err)
		}
	}
	defer compressor.Close()

	start := time.Now()

	var compressed, uncompressed int
	for _, sample := range samples {
		uncompressed += len(sample)
		compressed += len(compressor.EncodeAll(sample, nil))
	}

	dict.Ratio = float64(compressed) / float64(uncompressed)
	dict.Duration = time.Since(start)

	g.log.Debug().
		Int("dictionary_size", len(dict.Raw)).
		Int("uncompressed_total", uncompressed).
		Int("compressed_total", compressed).
		Float64("compression_ratio", dict.Ratio).
		Dur("compression_duration", dict.Duration).
		Msg("benchmark successful")

	return nil
}
