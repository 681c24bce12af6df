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

// Rewrite is the result of running one event through a policy.
type Rewrite struct {
	// Payload is the serialized event as it would be shipped.
	Payload []byte

	Hits   int
	Misses int

	// Keys holds the canonical bytes of every action, in order.
	Keys []string
	// Tokens holds the token emitted for each action, or an empty string when the
	// action was left unmodified.
	Tokens []string

	// Minted holds the entries created while rewriting. Depending on the policy,
	// they are either already live or waiting to be committed on acceptance.
	Minted []Entry
}

// Entry is a single dictionary mapping.
type Entry struct {
	Key   string
	Token string
}

// MintedSize returns the total key length of the minted entries.
func (r *Rewrite) MintedSize() int {
	size := 0
	for _, entry := range r.Minted {
		size += len(entry.Key)
	}
	return size
}

// Generation holds the dictionary statistics of a single batch.
type Generation struct {
	Entries     int
	UsedEntries int
	Hits        int
	Misses      int
}

// Batch is a finalized batch. Its counters never change once it was appended to
// the history of a processor.
type Batch struct {
	Index      uint
	TotalSize  int
	RawSize    int
	LineCount  int
	HeaderSize int

	// Generation is only set for processors that deduplicate actions.
	Generation *Generation
}
