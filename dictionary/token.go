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
	"strconv"

	"github.com/OneOfOne/xxhash"
)

const tokenPrefix = "#"

// Minter creates substitution tokens for canonical keys.
type Minter interface {
	Mint(key string) string
}

// Sequence mints tokens from a monotonic counter. Tokens are never reused, not even
// across dictionary generations.
type Sequence struct {
	next uint64
}

// NewSequence returns a minter whose first token is `#1`.
func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Mint(string) string {
	s.next++
	return tokenPrefix + strconv.FormatUint(s.next, 36)
}

// Hash mints tokens from the xxhash checksum of the key, so the same action gets the
// same token in every generation. Colliding checksums get a numbered suffix.
type Hash struct {
	owners map[string]string
}

// NewHash returns a content hash minter.
func NewHash() *Hash {
	h := Hash{
		owners: make(map[string]string),
	}
	return &h
}

func (h *Hash) Mint(key string) string {
	base := tokenPrefix + strconv.FormatUint(xxhash.ChecksumString64(key), 36)
	token := base
	for n := 1; ; n++ {
		owner, ok := h.owners[token]
		if !ok || owner == key {
			break
		}
		token = base + "~" + strconv.Itoa(n)
	}
	h.owners[token] = key
	return token
}
