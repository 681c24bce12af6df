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
	"sort"

	"github.com/optakt/flow-dedup/models/sim"
)

// Dictionary maps canonical action bytes to substitution tokens. It also keeps the
// reverse mapping, so that every token it emitted resolves to its original action.
type Dictionary struct {
	tokens map[string]string
	keys   map[string]string
	size   int
}

// New returns an empty dictionary.
func New() *Dictionary {
	d := Dictionary{
		tokens: make(map[string]string),
		keys:   make(map[string]string),
	}
	return &d
}

// Token returns the token for the given canonical key.
func (d *Dictionary) Token(key string) (string, bool) {
	token, ok := d.tokens[key]
	return token, ok
}

// Key returns the canonical key the given token stands for.
func (d *Dictionary) Key(token string) (string, bool) {
	key, ok := d.keys[token]
	return key, ok
}

// Insert adds an entry. It returns false without modifying the dictionary if either
// the key or the token is already present.
func (d *Dictionary) Insert(key string, token string) bool {
	_, hasKey := d.tokens[key]
	_, hasToken := d.keys[token]
	if hasKey || hasToken {
		return false
	}
	d.tokens[key] = token
	d.keys[token] = key
	d.size += len(key)
	return true
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.tokens)
}

// Size returns the total length of all keys.
func (d *Dictionary) Size() int {
	return d.size
}

// Entries returns all entries, ordered by token.
func (d *Dictionary) Entries() []sim.Entry {
	entries := make([]sim.Entry, 0, len(d.tokens))
	for key, token := range d.tokens {
		entries = append(entries, sim.Entry{Key: key, Token: token})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Token < entries[j].Token
	})
	return entries
}

// Build selects candidates greedily by score, which is the frequency of a key
// multiplied by its length, and adds them while their cumulative key length stays
// within the given budget. Selection stops at the first candidate that does not fit.
func Build(candidates *Candidates, budget int, mint Minter) *Dictionary {

	d := New()
	for _, candidate := range candidates.Ranked() {
		if d.size+len(candidate.Key) > budget {
			break
		}
		d.Insert(candidate.Key, mint.Mint(candidate.Key))
	}

	return d
}
