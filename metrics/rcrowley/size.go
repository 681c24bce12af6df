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

package rcrowley

import (
	"sync"

	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/models/sim"
)

// Size counts raw and estimated bytes of finalized batches per processor.
type Size struct {
	sync.Mutex
	title     string
	raw       map[string]metrics.Counter
	estimated map[string]metrics.Counter
	header    map[string]metrics.Counter
	batches   map[string]metrics.Counter
}

func NewSize(title string) *Size {
	s := Size{
		title:     title,
		raw:       make(map[string]metrics.Counter),
		estimated: make(map[string]metrics.Counter),
		header:    make(map[string]metrics.Counter),
		batches:   make(map[string]metrics.Counter),
	}

	return &s
}

// Batch implements the sim.Observer interface.
func (s *Size) Batch(label string, batch sim.Batch) {
	s.Lock()
	defer s.Unlock()
	raw, ok := s.raw[label]
	if !ok {
		raw = metrics.NewCounter()
		s.raw[label] = raw
		s.estimated[label] = metrics.NewCounter()
		s.header[label] = metrics.NewCounter()
		s.batches[label] = metrics.NewCounter()
	}
	raw.Inc(int64(batch.RawSize))
	s.estimated[label].Inc(int64(batch.TotalSize))
	s.header[label].Inc(int64(batch.HeaderSize))
	s.batches[label].Inc(1)
}

// Counts returns the raw and estimated byte counts of a processor.
func (s *Size) Counts(label string) (int64, int64) {
	s.Lock()
	defer s.Unlock()
	raw, ok := s.raw[label]
	if !ok {
		return 0, 0
	}
	return raw.Count(), s.estimated[label].Count()
}

func (s *Size) Output(log zerolog.Logger) {
	s.Lock()
	defer s.Unlock()

	log = log.With().Str("metrics", s.title).Str("type", "size").Logger()

	for label, raw := range s.raw {
		rawCount := raw.Count()
		estimatedCount := s.estimated[label].Count()
		ratio := 0.0
		if estimatedCount > 0 {
			ratio = float64(rawCount) / float64(estimatedCount)
		}
		log.Info().
			Str("label", label).
			Int64("batches", s.batches[label].Count()).
			Int64("raw_total", rawCount).
			Int64("estimated_total", estimatedCount).
			Int64("header_total", s.header[label].Count()).
			Float64("ratio", ratio).
			Msg("size metrics for one processor")
	}
}
