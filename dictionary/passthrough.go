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
	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

// Passthrough leaves events untouched. Processors using it measure the raw log
// lines, which makes it the baseline for every other policy.
type Passthrough struct{}

// NewPassthrough returns a policy without a dictionary.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

func (p *Passthrough) Rewrite(event *decision.Event) (*sim.Rewrite, error) {
	rw := sim.Rewrite{
		Payload: event.Raw,
	}
	return &rw, nil
}

func (p *Passthrough) Overflow(_ *sim.Rewrite, itemSize int, current int, max int) bool {
	return exceeds(itemSize, current, max)
}

func (p *Passthrough) Accept(*sim.Rewrite) ([]byte, error) {
	return nil, nil
}

func (p *Passthrough) BatchStart() ([]byte, error) {
	return nil, nil
}

// BatchEnd returns nil, as there are no dictionary statistics to report.
func (p *Passthrough) BatchEnd() *sim.Generation {
	return nil
}

func (p *Passthrough) Reprocess() bool {
	return false
}
