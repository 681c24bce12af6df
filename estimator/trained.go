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

	"github.com/gammazero/deque"
	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/codec/generator"
	"github.com/optakt/flow-dedup/codec/zbor"
	"github.com/optakt/flow-dedup/models/sim"
)

// Trained estimates payloads by compressing them with a zstd dictionary trained on
// the most recent payloads. A new model is trained whenever a batch closes. Until
// the first model exists, it estimates like the one-shot zstd estimator.
type Trained struct {
	log      zerolog.Logger
	cfg      Config
	generate *generator.Generator
	codec    *zbor.Codec
	fallback *Generic

	window  *deque.Deque
	model   []byte
	encoder *zstd.Encoder
	header  int
}

// NewTrained returns a trained estimator.
func NewTrained(log zerolog.Logger, opts ...Option) (*Trained, error) {

	cfg := DefaultConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	err := validator.New().Struct(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sim.ErrInvalidConfig, err)
	}

	fallback, err := NewGeneric(AlgorithmZstd, cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("could not create fallback estimator: %w", err)
	}

	generate := generator.New(log,
		generator.WithMaxSize(cfg.MaxModelSize),
		generator.WithLevel(cfg.Level),
	)

	t := Trained{
		log:      log.With().Str("component", "trained_estimator").Logger(),
		cfg:      cfg,
		generate: generate,
		codec:    zbor.NewCodec(cfg.Level),
		fallback: fallback,
		window:   deque.New(),
	}

	// A model given up front is charged to the first batch like any other model
	// that a batch starts with.
	if len(cfg.model) > 0 {
		size, err := t.install(cfg.model)
		if err != nil {
			return nil, fmt.Errorf("%w: could not use initial model: %s", sim.ErrInvalidConfig, err)
		}
		t.header = size
	}

	return &t, nil
}

// Estimate compresses the payload with the current model, if there is one.
func (t *Trained) Estimate(payload []byte) (int, error) {
	if t.encoder == nil {
		return t.fallback.Estimate(payload)
	}
	return len(t.encoder.EncodeAll(payload, nil)), nil
}

// Observe adds the payload to the training window, dropping the oldest payload once
// the window is full.
func (t *Trained) Observe(payload []byte) {
	sample := make([]byte, len(payload))
	copy(sample, payload)
	t.window.PushBack(sample)
	for t.window.Len() > t.cfg.Window {
		t.window.PopFront()
	}
}

// BatchStart returns the size of the model trained at the end of the previous batch,
// unless it was already charged to that batch.
func (t *Trained) BatchStart() (int, error) {
	header := t.header
	t.header = 0
	return header, nil
}

// BatchEnd trains a new model from the training window. If training fails, the
// current model stays in use.
func (t *Trained) BatchEnd() (int, error) {

	samples := make([][]byte, 0, t.window.Len())
	for i := 0; i < t.window.Len(); i++ {
		samples = append(samples, t.window.At(i).([]byte))
	}

	log := t.log.With().Int("samples", len(samples)).Logger()

	var dict *generator.Dictionary
	var err error
	if t.cfg.Adaptive {
		dict, err = t.generate.Optimize(samples)
	} else {
		dict, err = t.generate.Train(samples, t.cfg.MaxModelSize)
	}
	if err != nil {
		log.Debug().Err(err).Bool("fallback", t.encoder == nil).Msg("could not train model, keeping current one")
		return 0, nil
	}

	size, err := t.install(dict.Raw)
	if err != nil {
		log.Debug().Err(err).Msg("could not use trained model, keeping current one")
		return 0, nil
	}

	log.Debug().
		Int("model_size", len(t.model)).
		Int("compressed_size", size).
		Msg("trained new model")

	if t.cfg.ChargeOnClose {
		return size, nil
	}
	t.header = size
	return 0, nil
}

// install swaps in an encoder for the given model and returns the size of the
// model once compressed.
func (t *Trained) install(model []byte) (int, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(t.cfg.Level)),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderDict(model),
	)
	if err != nil {
		return 0, fmt.Errorf("could not create zstd encoder: %w", err)
	}

	if t.encoder != nil {
		_ = t.encoder.Close()
	}
	t.encoder = encoder
	t.model = model

	return len(t.codec.Compress(model)), nil
}

// Model returns the current model, or nil if none was trained yet.
func (t *Trained) Model() []byte {
	return t.model
}
