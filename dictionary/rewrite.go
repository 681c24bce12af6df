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

	"github.com/optakt/flow-dedup/codec/zbor"
	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

// resolveFunc returns the token for a key, whether it was a hit on the live
// dictionary, and whether the token was minted for this key just now.
type resolveFunc func(key string) (token string, hit bool, minted bool)

// substitute canonicalizes every action of the event, substitutes those that
// resolve to a token, and encodes the rewritten event.
func substitute(event *decision.Event, resolve resolveFunc) (*sim.Rewrite, error) {

	rw := sim.Rewrite{
		Keys:   make([]string, 0, len(event.Actions)),
		Tokens: make([]string, 0, len(event.Actions)),
	}
	items := make([]decision.Item, 0, len(event.Actions))
	for _, action := range event.Actions {
		key, err := decision.Canonical(action)
		if err != nil {
			return nil, fmt.Errorf("could not canonicalize action: %w", err)
		}

		token, hit, minted := resolve(key)
		if hit {
			rw.Hits++
		} else {
			rw.Misses++
		}
		if minted {
			rw.Minted = append(rw.Minted, sim.Entry{Key: key, Token: token})
		}

		if token == "" {
			items = append(items, decision.Literal(action))
		} else {
			items = append(items, decision.Reference(token))
		}
		rw.Keys = append(rw.Keys, key)
		rw.Tokens = append(rw.Tokens, token)
	}

	payload, err := decision.Encode(event, items)
	if err != nil {
		return nil, fmt.Errorf("could not encode payload: %w", err)
	}
	rw.Payload = payload

	return &rw, nil
}

// counters tracks hits, misses and reused entries for the current generation.
type counters struct {
	hits   int
	misses int
	used   map[string]struct{}
}

func newCounters() *counters {
	c := counters{
		used: make(map[string]struct{}),
	}
	return &c
}

// record adds the outcome of an accepted rewrite. Only tokens that were live before
// the rewrite count as used entries.
func (c *counters) record(rw *sim.Rewrite) {
	c.hits += rw.Hits
	c.misses += rw.Misses

	minted := make(map[string]struct{}, len(rw.Minted))
	for _, entry := range rw.Minted {
		minted[entry.Token] = struct{}{}
	}
	for _, token := range rw.Tokens {
		if token == "" {
			continue
		}
		_, fresh := minted[token]
		if fresh {
			continue
		}
		c.used[token] = struct{}{}
	}
}

// generation returns the statistics of the generation that just ended and resets
// all counters.
func (c *counters) generation(entries int) *sim.Generation {
	gen := sim.Generation{
		Entries:     entries,
		UsedEntries: len(c.used),
		Hits:        c.hits,
		Misses:      c.misses,
	}
	c.hits = 0
	c.misses = 0
	c.used = make(map[string]struct{})
	return &gen
}

// dump serializes entries as a canonical CBOR map from token to action bytes.
func dump(codec *zbor.Codec, entries []sim.Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	lookup := make(map[string]string, len(entries))
	for _, entry := range entries {
		lookup[entry.Token] = entry.Key
	}
	data, err := codec.Encode(lookup)
	if err != nil {
		return nil, fmt.Errorf("could not encode dictionary dump: %w", err)
	}
	return data, nil
}

// exceeds is the default overflow predicate.
func exceeds(itemSize int, current int, max int) bool {
	return itemSize+current > max
}
