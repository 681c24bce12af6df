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

// DefaultConfig is the default configuration of the trained estimator.
var DefaultConfig = Config{
	MaxModelSize:  16 * 1024,
	Window:        400,
	Level:         3,
	ChargeOnClose: false,
	Adaptive:      false,
}

// Config contains the parameters of the trained estimator.
type Config struct {
	// MaxModelSize is the target size in bytes of trained models.
	MaxModelSize int `validate:"gte=512"`

	// Window is the number of most recent payloads kept for training.
	Window int `validate:"gt=0"`

	// Level is the zstd compression level.
	Level int `validate:"gte=1,lte=22"`

	// ChargeOnClose charges the size of a freshly trained model to the batch whose
	// close triggered the training, instead of to the batch that uses it.
	ChargeOnClose bool

	// Adaptive searches for the smallest model size up to MaxModelSize that still
	// improves compression, instead of always training models of MaxModelSize.
	Adaptive bool

	model []byte
}

// Option is an option that can be given to the trained estimator on construction.
type Option func(*Config)

// WithMaxModelSize sets the target model size in bytes.
func WithMaxModelSize(size int) Option {
	return func(cfg *Config) {
		cfg.MaxModelSize = size
	}
}

// WithWindow sets how many recent payloads are used for training.
func WithWindow(n int) Option {
	return func(cfg *Config) {
		cfg.Window = n
	}
}

// WithLevel sets the zstd compression level.
func WithLevel(level int) Option {
	return func(cfg *Config) {
		cfg.Level = level
	}
}

// WithChargeOnClose charges model sizes to the batch that triggered the training.
func WithChargeOnClose(b bool) Option {
	return func(cfg *Config) {
		cfg.ChargeOnClose = b
	}
}

// WithAdaptive enables the search for the smallest useful model size.
func WithAdaptive(b bool) Option {
	return func(cfg *Config) {
		cfg.Adaptive = b
	}
}

// WithModel starts the estimator with a model trained ahead of time, instead of
// falling back to one-shot compression until the first batch closes.
func WithModel(model []byte) Option {
	return func(cfg *Config) {
		cfg.model = model
	}
}
