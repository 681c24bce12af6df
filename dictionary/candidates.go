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
)

// Candidate is a key observed during a batch window, along with its frequency.
type Candidate struct {
	Key       string
	Frequency int
}

// Score returns the number of bytes the candidate would save if every occurrence
// were substituted.
func (c Candidate) Score() int {
	return c.Frequency * len(c.Key)
}

// Candidates counts how often each key was observed during a batch window.
type Candidates struct {
	frequencies map[string]int
}

// NewCandidates returns an empty candidate set.
func NewCandidates() *Candidates {
	c := Candidates{
		frequencies: make(map[string]int),
	}
	return &c
}

// Add records one observation of the key.
func (c *Candidates) Add(key string) {
	c.frequencies[key]++
}

// Frequency returns how often the key was observed.
func (c *Candidates) Frequency(key string) int {
	return c.frequencies[key]
}

// Len returns the number of distinct keys.
func (c *Candidates) Len() int {
	return len(c.frequencies)
}

// Ranked returns all candidates by descending score. Candidates with equal scores
// are ordered by key, which keeps dictionary construction reproducible.
func (c *Candidates) Ranked() []Candidate {
	ranked := make([]Candidate, 0, len(c.frequencies))
	for key, frequency := range c.frequencies {
		ranked = append(ranked, Candidate{Key: key, Frequency: frequency})
	}
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := ranked[i].Score(), ranked[j].Score()
		if si != sj {
			return si > sj
		}
		return ranked[i].Key < ranked[j].Key
	})
	return ranked
}
