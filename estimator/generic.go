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
	"bytes"
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/optakt/flow-dedup/models/sim"
)

// Generic estimates a payload by its compressed length, compressing every payload on
// its own without any memory of previous payloads.
type Generic struct {
	algorithm Algorithm
	level     int
	zstd      *zstd.Encoder
}

// NewGeneric returns a one-shot estimator for the given algorithm. The level is
// interpreted by the algorithm: zstd levels 1-22, zlib levels -2-9, and s2 levels
// 1 (fast), 2 (better) and 3 (best).
func NewGeneric(algorithm Algorithm, level int) (*Generic, error) {

	g := Generic{
		algorithm: algorithm,
		level:     level,
	}

	switch algorithm {
	case AlgorithmZstd:
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return nil, fmt.Errorf("could not create zstd encoder: %w", err)
		}
		g.zstd = encoder
	case AlgorithmZlib:
		if level < zlib.HuffmanOnly || level > zlib.BestCompression {
			return nil, fmt.Errorf("%w: invalid zlib level (%d)", sim.ErrInvalidConfig, level)
		}
	case AlgorithmS2:
		if level < 1 || level > 3 {
			return nil, fmt.Errorf("%w: invalid s2 level (%d)", sim.ErrInvalidConfig, level)
		}
	default:
		return nil, fmt.Errorf("%w: %s", sim.ErrInvalidConfig, algorithm)
	}

	return &g, nil
}

// Label returns a short description such as `zstd_3`.
func (g *Generic) Label() string {
	return fmt.Sprintf("%s_%d", g.algorithm, g.level)
}

func (g *Generic) Estimate(payload []byte) (int, error) {
	switch g.algorithm {
	case AlgorithmZstd:
		return len(g.zstd.EncodeAll(payload, nil)), nil
	case AlgorithmZlib:
		var buf bytes.Buffer
		w, err := zlib.NewWriterLevel(&buf, g.level)
		if err != nil {
			return 0, fmt.Errorf("could not create zlib writer: %w", err)
		}
		_, err = w.Write(payload)
		if err != nil {
			return 0, fmt.Errorf("could not compress payload: %w", err)
		}
		err = w.Close()
		if err != nil {
			return 0, fmt.Errorf("could not flush zlib writer: %w", err)
		}
		return buf.Len(), nil
	case AlgorithmS2:
		switch g.level {
		case 1:
			return len(s2.Encode(nil, payload)), nil
		case 2:
			return len(s2.EncodeBetter(nil, payload)), nil
		default:
			return len(s2.EncodeBest(nil, payload)), nil
		}
	default:
		return 0, fmt.Errorf("invalid algorithm (%s)", g.algorithm)
	}
}

func (g *Generic) Observe([]byte) {}

func (g *Generic) BatchStart() (int, error) {
	return 0, nil
}

func (g *Generic) BatchEnd() (int, error) {
	return 0, nil
}
