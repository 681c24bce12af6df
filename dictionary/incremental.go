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
	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

// Incremental mints a token for every action it has not seen before and inserts it
// into the live dictionary right away. Entries are never evicted, so the dictionary
// grows without bound for the duration of a run.
type Incremental struct {
	log      zerolog.Logger
	cfg      Config
	live     *Dictionary
	counters *counters
}

// NewIncremental returns an incremental policy that commits new entries immediately.
func NewIncremental(log zerolog.Logger, opts ...Option) *Incremental {

	i := Incremental{
		log:      log.With().Str("component", "incremental_policy").Logger(),
		cfg:      configure(opts),
		live:     New(),
		counters: newCounters(),
	}

	return &i
}

// Rewrite substitutes every action. Misses get a fresh token which is live as soon
// as it is minted.
func (i *Incremental) Rewrite(event *decision.Event) (*sim.Rewrite, error) {
	return substitute(event, func(key string) (string, bool, bool) {
		token, ok := i.live.Token(key)
		if ok {
			return token, true, false
		}
		token = i.cfg.minter.Mint(key)
		i.live.Insert(key, token)
		return token, false, true
	})
}

func (i *Incremental) Overflow(_ *sim.Rewrite, itemSize int, current int, max int) bool {
	return exceeds(itemSize, current, max)
}

// Accept counts the outcome of the rewrite and returns the dump of the entries it
// added, which have to be shipped with the batch.
func (i *Incremental) Accept(rw *sim.Rewrite) ([]byte, error) {
	i.counters.record(rw)
	return dump(i.cfg.codec, rw.Minted)
}

func (i *Incremental) BatchStart() ([]byte, error) {
	return nil, nil
}

func (i *Incremental) BatchEnd() *sim.Generation {
	gen := i.counters.generation(i.live.Len())

	i.log.Debug().
		Int("entries", i.live.Len()).
		Int("size", i.live.Size()).
		Int("used_entries", gen.UsedEntries).
		Msg("dictionary grown")

	return gen
}

func (i *Incremental) Reprocess() bool {
	return false
}

// Lookup resolves a token of the live dictionary to its canonical action.
func (i *Incremental) Lookup(token string) (string, bool) {
	return i.live.Key(token)
}

// Len returns the number of entries of the live dictionary.
func (i *Incremental) Len() int {
	return i.live.Len()
}
