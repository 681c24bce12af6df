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

const minDictionarySize = 512

// DefaultConfig is the default configuration for the Generator.
var DefaultConfig = Config{
	StartSize:         minDictionarySize, // 512B
	MaxSize:           64 * 1024,         // 64kB
	RatioImprovements: 0.1,               // 10% improvement per iteration
	HashBytes:         6,
	Level:             3,
}

type Config struct {
	// The dictionary size in bytes to start with when optimizing dictionaries.
	// Gets multiplied by 2 at each loop.
	StartSize int

	// The dictionary size in bytes that the optimization loop never exceeds.
	MaxSize int

	// The tolerance for the improvement of compression ratio between each loop. Should be between 0 and 1.
	// For example, a value of 0.1 means that as long as a dictionary is at least 10% more performant than the
	// previously generated one, its size increase is tolerated and the generation loop continues. Only when a
	// dictionary is generated which is not at least 10% more performant than the previous one does the loop
	// stop, and the previous dictionary is selected as the most optimized one.
	RatioImprovements float64

	// The minimum match length indexed by the dictionary builder. Must be between 4 and 8.
	HashBytes int

	// The zstd level used to benchmark dictionaries.
	Level int
}

// Option is an option that can be given to the generator to configure optional
// parameters on initialization.
type Option func(*Config)

// WithStartSize sets the dictionary size in Bytes to start with when optimizing dictionaries.
// This value cannot be below 512B, or the trained dictionaries are too small to be useful.
func WithStartSize(size int) Option {
	return func(cfg *Config) {
		if size > minDictionarySize {
			cfg.StartSize = size
		} else {
			cfg.StartSize = minDictionarySize
		}
	}
}

// WithMaxSize sets the upper bound for the size of generated dictionaries.
func WithMaxSize(size int) Option {
	return func(cfg *Config) {
		cfg.MaxSize = size
	}
}

// WithRatioImprovementTolerance sets the compression ratio improvement that is required for the
// optimization loop to try a bigger dictionary.
func WithRatioImprovementTolerance(tolerance float64) Option {
	return func(cfg *Config) {
		cfg.RatioImprovements = tolerance
	}
}

// WithHashBytes sets the minimum match length indexed by the dictionary builder.
func WithHashBytes(n int) Option {
	return func(cfg *Config) {
		if n >= 4 && n <= 8 {
			cfg.HashBytes = n
		}
	}
}

// WithLevel sets the zstd level used when benchmarking dictionaries.
func WithLevel(level int) Option {
	return func(cfg *Config) {
		cfg.Level = level
	}
}
