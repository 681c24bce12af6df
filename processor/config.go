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

package processor

import (
	"github.com/optakt/flow-dedup/models/sim"
)

// DefaultConfig is the default configuration for the Processor.
var DefaultConfig = Config{
	MaxBatchSize: 198 * 1024, // 198kB
}

// Config contains optional parameters we can set for the processor.
type Config struct {
	// MaxBatchSize is the size in bytes that a batch may not exceed by accepting
	// another record. A single record that is bigger still forms its own batch.
	MaxBatchSize int `validate:"gt=0"`

	// RawTraining hands the raw log line of every accepted record to the estimator
	// for training, instead of the rewritten payload it estimated.
	RawTraining bool

	observers []sim.Observer
}

// Option is an option that can be given to the processor on construction.
type Option func(*Config)

// WithMaxBatchSize sets the batch size budget in bytes.
func WithMaxBatchSize(size int) Option {
	return func(cfg *Config) {
		cfg.MaxBatchSize = size
	}
}

// WithRawTraining makes the estimator train on raw log lines.
func WithRawTraining(b bool) Option {
	return func(cfg *Config) {
		cfg.RawTraining = b
	}
}

// WithObserver registers an observer that is notified of every finalized batch.
func WithObserver(observer sim.Observer) Option {
	return func(cfg *Config) {
		cfg.observers = append(cfg.observers, observer)
	}
}
