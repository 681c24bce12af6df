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

package sim

import (
	"github.com/optakt/flow-dedup/models/decision"
)

// Policy is the dictionary manager of a processor. It decides how the actions of an
// event are substituted and how its dictionary evolves across batch boundaries.
//
// Rewrite must not change any counters; all bookkeeping for a record happens in
// Accept, which the processor calls once the record is admitted into a batch. This
// allows the processor to rewrite a record a second time after closing a batch.
type Policy interface {
	Rewrite(event *decision.Event) (*Rewrite, error)
	Overflow(rw *Rewrite, itemSize int, current int, max int) bool
	Accept(rw *Rewrite) ([]byte, error)
	BatchStart() ([]byte, error)
	BatchEnd() *Generation
	Reprocess() bool
}

// Estimator computes the size a payload contributes to a batch.
type Estimator interface {
	Estimate(payload []byte) (int, error)
	Observe(raw []byte)
	BatchStart() (int, error)
	BatchEnd() (int, error)
}

// Observer is notified of every batch a processor finalizes.
type Observer interface {
	Batch(label string, batch Batch)
}
