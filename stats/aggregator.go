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

package stats

import (
	"fmt"
	"sort"
	"sync"

	"github.com/optakt/flow-dedup/models/sim"
)

// Aggregator collects the finalized batches of many processors. It can be shared
// between clients running in parallel.
type Aggregator struct {
	sync.Mutex
	batches map[string][]sim.Batch
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	a := Aggregator{
		batches: make(map[string][]sim.Batch),
	}
	return &a
}

// Batch implements the sim.Observer interface.
func (a *Aggregator) Batch(label string, batch sim.Batch) {
	a.Lock()
	defer a.Unlock()
	a.batches[label] = append(a.batches[label], batch)
}

// Summary summarizes the batches of one processor.
func (a *Aggregator) Summary(label string) (*Summary, error) {
	a.Lock()
	defer a.Unlock()
	return Summarize(label, a.batches[label])
}

// Summaries summarizes the batches of every processor, ordered by label.
func (a *Aggregator) Summaries() ([]*Summary, error) {
	a.Lock()
	defer a.Unlock()

	labels := make([]string, 0, len(a.batches))
	for label := range a.batches {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	summaries := make([]*Summary, 0, len(labels))
	for _, label := range labels {
		summary, err := Summarize(label, a.batches[label])
		if err != nil {
			return nil, fmt.Errorf("could not summarize processor: %w", err)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
