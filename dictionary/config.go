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

package dictionary

import (
	"github.com/optakt/flow-dedup/codec/zbor"
)

// DefaultConfig is the default configuration for dictionary policies.
var DefaultConfig = Config{
	GrowthRatio: 2.8,
	AllActions:  false,
	Level:       3,
}

// Config contains the optional parameters of dictionary policies.
type Config struct {
	// GrowthRatio is the compression ratio assumed when reserving room for dictionary
	// entries that have not been committed yet.
	GrowthRatio float64

	// AllActions makes snapshot policies count every observed action as a candidate
	// for the next generation, instead of only the actions that were not substituted.
	AllActions bool

	// Level is the zstd level of the codec created when none is given.
	Level int

	minter Minter
	codec  *zbor.Codec
}

// Option is an option that can be given to a policy on construction.
type Option func(*Config)

// WithGrowthRatio sets the compression ratio assumed for dictionary growth.
func WithGrowthRatio(ratio float64) Option {
	return func(cfg *Config) {
		cfg.GrowthRatio = ratio
	}
}

// WithAllActions makes snapshot policies build the next generation from hits as
// well as misses, so that actions in use keep their entries.
func WithAllActions(b bool) Option {
	return func(cfg *Config) {
		cfg.AllActions = b
	}
}

// WithLevel sets the zstd level of the codec created when none is given.
func WithLevel(level int) Option {
	return func(cfg *Config) {
		cfg.Level = level
	}
}

// WithMinter sets the token minter. Each policy needs its own minter.
func WithMinter(minter Minter) Option {
	return func(cfg *Config) {
		cfg.minter = minter
	}
}

// WithCodec sets the codec used to serialize dictionary dumps.
func WithCodec(codec *zbor.Codec) Option {
	return func(cfg *Config) {
		cfg.codec = codec
	}
}

func configure(opts []Option) Config {
	cfg := DefaultConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.minter == nil {
		cfg.minter = NewSequence()
	}
	if cfg.codec == nil {
		cfg.codec = zbor.NewCodec(cfg.Level)
	}
	return cfg
}
