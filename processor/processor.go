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
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

// Processor accumulates records into batches. Each record is rewritten by the
// policy, sized by the estimator and added to the current batch, unless it would
// make the batch overflow, in which case the batch is closed first.
type Processor struct {
	log      zerolog.Logger
	cfg      Config
	label    string
	policy   sim.Policy
	estimate sim.Estimator

	status  Status
	index   uint
	size    int
	raw     int
	lines   int
	header  int
	batches []sim.Batch
}

// New returns a processor for the given policy and estimator. It opens the first
// batch right away.
func New(log zerolog.Logger, label string, policy sim.Policy, estimate sim.Estimator, options ...Option) (*Processor, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	err := validator.New().Struct(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sim.ErrInvalidConfig, err)
	}

	p := Processor{
		log:      log.With().Str("component", "processor").Str("label", label).Logger(),
		cfg:      cfg,
		label:    label,
		policy:   policy,
		estimate: estimate,
		status:   StatusAccumulating,
	}

	err = p.open()
	if err != nil {
		return nil, fmt.Errorf("could not open first batch: %w", err)
	}

	return &p, nil
}

// Label returns the label of the processor.
func (p *Processor) Label() string {
	return p.label
}

// Status returns the current status of the state machine.
func (p *Processor) Status() Status {
	return p.status
}

// Batches returns the finalized batches.
func (p *Processor) Batches() []sim.Batch {
	batches := make([]sim.Batch, len(p.batches))
	copy(batches, p.batches)
	return batches
}

// Process adds a single record to the current batch, closing the batch first if the
// record does not fit.
func (p *Processor) Process(event *decision.Event) error {
	if p.status != StatusAccumulating {
		return fmt.Errorf("invalid status for processing record (%s)", p.status)
	}

	rw, itemSize, err := p.measure(event)
	if err != nil {
		return fmt.Errorf("could not measure record: %w", err)
	}

	// An empty batch is never closed, so a record that is bigger than the budget
	// on its own ends up alone in a batch.
	if p.lines > 0 && p.policy.Overflow(rw, itemSize, p.size, p.cfg.MaxBatchSize) {
		p.status = StatusClosing

		err = p.finish()
		if err != nil {
			return fmt.Errorf("could not finish batch: %w", err)
		}
		err = p.open()
		if err != nil {
			return fmt.Errorf("could not open batch: %w", err)
		}

		// The policy's state changed when the batch closed, so the record has to
		// be rewritten against it.
		if p.policy.Reprocess() {
			rw, itemSize, err = p.measure(event)
			if err != nil {
				return fmt.Errorf("could not measure record again: %w", err)
			}
		}
	}

	err = p.accumulate(event, rw, itemSize)
	if err != nil {
		return fmt.Errorf("could not accumulate record: %w", err)
	}

	return nil
}

// Drain closes the current batch, if it holds any record. No record can be
// processed afterwards.
func (p *Processor) Drain() error {
	if p.status != StatusAccumulating {
		return fmt.Errorf("invalid status for draining (%s)", p.status)
	}

	if p.lines > 0 {
		p.status = StatusClosing
		err := p.finish()
		if err != nil {
			return fmt.Errorf("could not finish batch: %w", err)
		}
	}

	p.status = StatusDrained

	p.log.Debug().Int("batches", len(p.batches)).Msg("processor drained")

	return nil
}

func (p *Processor) measure(event *decision.Event) (*sim.Rewrite, int, error) {
	rw, err := p.policy.Rewrite(event)
	if err != nil {
		return nil, 0, fmt.Errorf("could not rewrite record: %w", err)
	}
	itemSize, err := p.estimate.Estimate(rw.Payload)
	if err != nil {
		return nil, 0, fmt.Errorf("could not estimate record: %w", err)
	}
	return rw, itemSize, nil
}

func (p *Processor) accumulate(event *decision.Event, rw *sim.Rewrite, itemSize int) error {

	growth, err := p.policy.Accept(rw)
	if err != nil {
		return fmt.Errorf("could not accept record: %w", err)
	}
	err = p.charge(growth)
	if err != nil {
		return fmt.Errorf("could not charge dictionary growth: %w", err)
	}

	sample := rw.Payload
	if p.cfg.RawTraining {
		sample = event.Raw
	}
	p.estimate.Observe(sample)

	p.size += itemSize
	p.raw += len(event.Raw)
	p.lines++

	return nil
}

// finish runs the end-of-batch hooks and appends the batch to the history.
func (p *Processor) finish() error {
	if p.status != StatusClosing {
		return fmt.Errorf("invalid status for finishing batch (%s)", p.status)
	}

	gen := p.policy.BatchEnd()

	header, err := p.estimate.BatchEnd()
	if err != nil {
		return fmt.Errorf("could not run estimator end hook: %w", err)
	}
	p.header += header
	p.size += header

	batch := sim.Batch{
		Index:      p.index,
		TotalSize:  p.size,
		RawSize:    p.raw,
		LineCount:  p.lines,
		HeaderSize: p.header,
		Generation: gen,
	}
	p.batches = append(p.batches, batch)

	p.log.Debug().
		Uint("index", batch.Index).
		Int("total_size", batch.TotalSize).
		Int("raw_size", batch.RawSize).
		Int("lines", batch.LineCount).
		Int("header_size", batch.HeaderSize).
		Msg("batch finished")

	for _, observer := range p.cfg.observers {
		observer.Batch(p.label, batch)
	}

	p.index++
	p.size = 0
	p.raw = 0
	p.lines = 0
	p.header = 0

	return nil
}

// open runs the start-of-batch hooks, charging whatever has to be shipped before
// the first record of the batch.
func (p *Processor) open() error {

	dump, err := p.policy.BatchStart()
	if err != nil {
		return fmt.Errorf("could not run policy start hook: %w", err)
	}
	err = p.charge(dump)
	if err != nil {
		return fmt.Errorf("could not charge dictionary dump: %w", err)
	}

	header, err := p.estimate.BatchStart()
	if err != nil {
		return fmt.Errorf("could not run estimator start hook: %w", err)
	}
	p.header += header
	p.size += header

	p.status = StatusAccumulating

	return nil
}

// charge adds the estimated size of dictionary state to the header of the batch.
func (p *Processor) charge(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	size, err := p.estimate.Estimate(data)
	if err != nil {
		return err
	}
	p.header += size
	p.size += size
	return nil
}
