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

type Policy struct {
	RewriteFunc    func(event *decision.Event) (*sim.Rewrite, error)
	OverflowFunc   func(rw *sim.Rewrite, itemSize int, current int, max int) bool
	AcceptFunc     func(rw *sim.Rewrite) ([]byte, error)
	BatchStartFunc func() ([]byte, error)
	BatchEndFunc   func() *sim.Generation
	ReprocessFunc  func() bool
}

func BaselinePolicy(t *testing.T) *Policy {
	t.Helper()

	p := Policy{
		RewriteFunc: func(event *decision.Event) (*sim.Rewrite, error) {
			return &sim.Rewrite{Payload: event.Raw}, nil
		},
		OverflowFunc: func(_ *sim.Rewrite, itemSize int, current int, max int) bool {
			return itemSize+current > max
		},
		AcceptFunc: func(*sim.Rewrite) ([]byte, error) {
			return nil, nil
		},
		BatchStartFunc: func() ([]byte, error) {
			return nil, nil
		},
		BatchEndFunc: func() *sim.Generation {
			return nil
		},
		ReprocessFunc: func() bool {
			return false
		},
	}

	return &p
}

func (p *Policy) Rewrite(event *decision.Event) (*sim.Rewrite, error) {
	return p.RewriteFunc(event)
}

func (p *Policy) Overflow(rw *sim.Rewrite, itemSize int, current int, max int) bool {
	return p.OverflowFunc(rw, itemSize, current, max)
}

func (p *Policy) Accept(rw *sim.Rewrite) ([]byte, error) {
	return p.AcceptFunc(rw)
}

func (p *Policy) BatchStart() ([]byte, error) {
	return p.BatchStartFunc()
}

func (p *Policy) BatchEnd() *sim.Generation {
	return p.BatchEndFunc()
}

func (p *Policy) Reprocess() bool {
	return p.ReprocessFunc()
}
