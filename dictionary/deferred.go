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
	"math"

	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

// Deferred mints a token for every action it has not seen before, but only commits
// the new entries into the live dictionary once the record that minted them is
// accepted into a batch. Until then, the overflow check reserves room for them.
type Deferred struct {
	log      zerolog.Logger
	cfg      Config
	live     *Dictionary
	counters *counters
}

// NewDeferred returns an incremental policy with deferred commits.
func NewDeferred(log zerolog.Logger, opts ...Option) (*Deferred, error) {

	cfg := configure(opts)
	if cfg.GrowthRatio <= 0 {
		return nil, fmt.Errorf("%w: growth ratio must be positive (%f)", sim.ErrInvalidConfig, cfg.GrowthRatio)
	}

	d := Deferred{
		log:      log.With().Str("component", "deferred_policy").Logger(),
		cfg:      cfg,
		live:     New(),
		counters: newCounters(),
	}

	return &d, nil
}

// Rewrite substitutes every action. Misses get a pending token, which is reused if
// the same action appears again in the record.
func (d *Deferred) Rewrite(event *decision.Event) (*sim.Rewrite, error) {
	pending := make(map[string]string)
	return substitute(event, func(key string) (string, bool, bool) {
		token, ok := d.live.Token(key)
		if ok {
			return token, true, false
		}
		token, ok = pending[key]
		if ok {
			return token, false, false
		}
		token = d.cfg.minter.Mint(key)
		pending[key] = token
		return token, false, true
	})
}

// Overflow reserves the estimated compressed size of the pending entries on top of
// the default predicate.
func (d *Deferred) Overflow(rw *sim.Rewrite, itemSize int, current int, max int) bool {
	return exceeds(itemSize+d.reserve(rw), current, max)
}

func (d *Deferred) reserve(rw *sim.Rewrite) int {
	return int(math.Ceil(float64(rw.MintedSize()) / d.cfg.GrowthRatio))
}

// Accept commits the pending entries of the rewrite and returns their dump.
func (d *Deferred) Accept(rw *sim.Rewrite) ([]byte, error) {
	for _, entry := range rw.Minted {
		d.live.Insert(entry.Key, entry.Token)
	}
	d.counters.record(rw)
	return dump(d.cfg.codec, rw.Minted)
}

func (d *Deferred) BatchStart() ([]byte, error) {
	return nil, nil
}

func (d *Deferred) BatchEnd() *sim.Generation {
	gen := d.counters.generation(d.live.Len())

	d.log.Debug().
		Int("entries", d.live.Len()).
		Int("size", d.live.Size()).
		Int("used_entries", gen.UsedEntries).
		Msg("dictionary grown")

	return gen
}

func (d *Deferred) Reprocess() bool {
	return false
}

// Lookup resolves a token of the live dictionary to its canonical action.
func (d *Deferred) Lookup(token string) (string, bool) {
	return d.live.Key(token)
}

// Len returns the number of entries of the live dictionary.
func (d *Deferred) Len() int {
	return d.live.Len()
}
