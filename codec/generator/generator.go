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

	"github.com/rs/zerolog"
)

// Generator trains Zstandard dictionaries from in-memory samples.
type Generator struct {
	cfg Config
	log zerolog.Logger
}

// New returns a new dictionary generator.
func New(log zerolog.Logger, opts ...Option) *Generator {

	cfg := DefaultConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	g := Generator{
		log: log.With().Str("component", "generator").Logger(),
		cfg: cfg,
	}

	return &g
}

// Optimize searches for the smallest dictionary that still improves compression of the
// samples noticeably.
func (g *Generator) Optimize(samples [][]byte) (*Dictionary, error) {

	// Compute baseline benchmark when not using a dictionary.
	baseline := &Dictionary{}
	err := g.Benchmark(baseline, samples)
	if err != nil {
		return nil, fmt.Errorf("could not benchmark baseline performance: %w", err)
	}

	g.log.Debug().
		Float64("compression_ratio", baseline.Ratio).
		Dur("compression_duration", baseline.Duration).
		Msg("benchmarked baseline compression")

	// As long as the increase in compression ratio is considered tolerable, this loop
	// generates increasingly bigger dictionaries, multiplying their size by a factor of
	// two at each iteration. In each loop, dictionaries are generated and benchmarked.
	current, previous := baseline, (*Dictionary)(nil)
	for size := g.cfg.StartSize; size <= g.cfg.MaxSize && g.tolerateImprovement(current, previous); size = size * 2 {
		previous = current

		dict, err := g.Train(samples, size)
		if err != nil {
			return nil, fmt.Errorf("could not generate raw dictionary: %w", err)
		}

		err = g.Benchmark(dict, samples)
		if err != nil {
			return nil, fmt.Errorf("could not benchmark dictionary: %w", err)
		}

		current = dict
	}

	// The last generated dictionary is kept if it was still a tolerable improvement, in
	// which case the loop stopped on the size limit.
	best := current
	if !g.tolerateImprovement(current, previous) {
		best = previous
	}
	if len(best.Raw) == 0 {
		return nil, fmt.Errorf("no dictionary improves on baseline compression")
	}

	g.log.Debug().
		Int("best_size", best.Size).
		Float64("best_ratio", best.Ratio).
		Dur("best_duration", best.Duration).
		Msg("found most optimized dictionary")

	return best, nil
}

// tolerateImprovement returns true if the improvement between current and previous is at least equal to the
// configured ratio improvement tolerance.
func (g *Generator) tolerateImprovement(current, previous *Dictionary) bool {
	if current == nil || previous == nil {
		return true
	}

	betterCompressionRatio := current.Ratio < previous.Ratio*(1-g.cfg.RatioImprovements)
	betterSpeed := current.Ratio < previous.Ratio && current.Duration < previous.Duration

	return betterCompressionRatio || betterSpeed
}
