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
	"testing"

	"github.com/OneOfOne/xxhash"
	"github.com/stretchr/testify/assert"

	"github.com/optakt/flow-dedup/models/sim"
)

func TestHash_Collision(t *testing.T) {
	h := NewHash()

	base := tokenPrefix + strconv.FormatUint(xxhash.ChecksumString64("key"), 36)
	h.owners[base] = "other"
	h.owners[base+"~1"] = "another"

	token := h.Mint("key")

	assert.Equal(t, base+"~2", token)
	assert.Equal(t, token, h.Mint("key"))
	assert.Equal(t, "key", h.owners[token])
}

func TestCounters(t *testing.T) {
	c := newCounters()

	// The first record mints both of its tokens, so none of them count as used.
	c.record(&sim.Rewrite{
		Hits:   0,
		Misses: 2,
		Tokens: []string{"#1", "#2"},
		Minted: []sim.Entry{{Key: "a", Token: "#1"}, {Key: "b", Token: "#2"}},
	})
	c.record(&sim.Rewrite{
		Hits:   2,
		Misses: 1,
		Tokens: []string{"#1", "", "#1"},
	})

	gen := c.generation(2)

	assert.Equal(t, 2, gen.Entries)
	assert.Equal(t, 1, gen.UsedEntries)
	assert.Equal(t, 2, gen.Hits)
	assert.Equal(t, 3, gen.Misses)

	gen = c.generation(2)

	assert.Zero(t, gen.UsedEntries)
	assert.Zero(t, gen.Hits)
	assert.Zero(t, gen.Misses)
}
