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

package mocks

import (
	"testing"

	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

type Processor struct {
	LabelFunc   func() string
	ProcessFunc func(event *decision.Event) error
	DrainFunc   func() error
	BatchesFunc func() []sim.Batch
}

func BaselineProcessor(t *testing.T) *Processor {
	t.Helper()

	p := Processor{
		LabelFunc: func() string {
			return "mock"
		},
		ProcessFunc: func(*decision.Event) error {
			return nil
		},
		DrainFunc: func() error {
			return nil
		},
		BatchesFunc: func() []sim.Batch {
			return nil
		},
	}

	return &p
}

func (p *Processor) Label() string {
	return p.LabelFunc()
}

func (p *Processor) Process(event *decision.Event) error {
	return p.ProcessFunc(event)
}

func (p *Processor) Drain() error {
	return p.DrainFunc()
}

func (p *Processor) Batches() []sim.Batch {
	return p.BatchesFunc()
}

type Observer struct {
	BatchFunc func(label string, batch sim.Batch)
}

func BaselineObserver(t *testing.T) *Observer {
	t.Helper()

	o := Observer{
		BatchFunc: func(string, sim.Batch) {},
	}

	return &o
}

func (o *Observer) Batch(label string, batch sim.Batch) {
	o.BatchFunc(label, batch)
}

type Source struct {
	NextFunc func() ([]byte, error)
}

func (s *Source) Next() ([]byte, error) {
	return s.NextFunc()
}
