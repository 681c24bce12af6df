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
	"fmt"

	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

// Snapshot replaces its dictionary wholesale at every batch boundary. The dictionary
// used during a batch is always built from what was observed during the previous
// batch, so the first batch of a run is processed with an empty dictionary.
type Snapshot struct {
	log        zerolog.Logger
	cfg        Config
	budget     int
	live       *Dictionary
	candidates *Candidates
	counters   *counters
	generation uint
}

// NewSnapshot returns a snapshot policy whose dictionaries never hold more than
// budget bytes of keys.
func NewSnapshot(log zerolog.Logger, budget int, opts ...Option) (*Snapshot, error) {

	if budget <= 0 {
		return nil, fmt.Errorf("%w: dictionary budget must be positive (%d)", sim.ErrInvalidConfig, budget)
	}

	s := Snapshot{
		log:        log.With().Str("component", "snapshot_policy").Logger(),
		cfg:        configure(opts),
		budget:     budget,
		live:       New(),
		candidates: NewCandidates(),
		counters:   newCounters(),
	}

	return &s, nil
}

// Rewrite substitutes the actions found in the live dictionary and leaves all others
// unmodified.
func (s *Snapshot) Rewrite(event *decision.Event) (*sim.Rewrite, error) {
	return substitute(event, func(key string) (string, bool, bool) {
		token, ok := s.live.Token(key)
		return token, ok, false
	})
}

func (s *Snapshot) Overflow(_ *sim.Rewrite, itemSize int, current int, max int) bool {
	return exceeds(itemSize, current, max)
}

// Accept counts the outcome of the rewrite and adds the actions that missed the live
// dictionary to the candidates for the next generation.
func (s *Snapshot) Accept(rw *sim.Rewrite) ([]byte, error) {
	s.counters.record(rw)
	for i, key := range rw.Keys {
		if !s.cfg.AllActions && rw.Tokens[i] != "" {
			continue
		}
		s.candidates.Add(key)
	}
	return nil, nil
}

// BatchStart returns the dump of the dictionary that has to be shipped along with
// the upcoming batch.
func (s *Snapshot) BatchStart() ([]byte, error) {
	return dump(s.cfg.codec, s.live.Entries())
}

// BatchEnd builds the next generation from the candidates of the closing batch and
// returns the statistics of the generation that was used for it.
func (s *Snapshot) BatchEnd() *sim.Generation {

	gen := s.counters.generation(s.live.Len())

	next := Build(s.candidates, s.budget, s.cfg.minter)
	s.generation++

	s.log.Debug().
		Uint("generation", s.generation).
		Int("candidates", s.candidates.Len()).
		Int("entries", next.Len()).
		Int("size", next.Size()).
		Int("used_entries", gen.UsedEntries).
		Msg("built dictionary generation")

	s.live = next
	s.candidates = NewCandidates()

	return gen
}

// Reprocess returns true, as a record that overflowed the batch was rewritten with
// the dictionary of the batch that was just closed.
func (s *Snapshot) Reprocess() bool {
	return true
}

// Lookup resolves a token of the live dictionary to its canonical action.
func (s *Snapshot) Lookup(token string) (string, bool) {
	return s.live.Key(token)
}

// Len returns the number of entries of the live dictionary.
func (s *Snapshot) Len() int {
	return s.live.Len()
}
