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

package dictionary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/flow-dedup/dictionary"
	"github.com/optakt/flow-dedup/models/sim"
	"github.com/optakt/flow-dedup/testing/mocks"
)

func TestNewDeferred(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewDeferred(mocks.NoopLogger)

		require.NoError(t, err)
		assert.False(t, policy.Reprocess())
	})

	t.Run("handles invalid growth ratio", func(t *testing.T) {
		t.Parallel()

		_, err := dictionary.NewDeferred(mocks.NoopLogger, dictionary.WithGrowthRatio(0))

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})
}

func TestDeferred(t *testing.T) {
	t.Run("commits on accept", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewDeferred(mocks.NoopLogger)
		require.NoError(t, err)

		rw, err := policy.Rewrite(mocks.GenericEvent(mocks.GenericAction(0)))
		require.NoError(t, err)

		require.Len(t, rw.Minted, 1)
		_, ok := policy.Lookup(rw.Tokens[0])
		assert.False(t, ok)
		assert.Zero(t, policy.Len())

		growth, err := policy.Accept(rw)
		require.NoError(t, err)

		assert.NotEmpty(t, growth)
		key, ok := policy.Lookup(rw.Tokens[0])
		assert.True(t, ok)
		assert.Equal(t, rw.Keys[0], key)
		assert.Equal(t, 1, policy.Len())
	})

	t.Run("rejected rewrite leaves no trace", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewDeferred(mocks.NoopLogger)
		require.NoError(t, err)

		_, err = policy.Rewrite(mocks.GenericEvent(mocks.GenericAction(0)))
		require.NoError(t, err)

		assert.Zero(t, policy.Len())
		gen := policy.BatchEnd()
		assert.Zero(t, gen.Misses)
	})

	t.Run("repeated key in one record reuses the pending token", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewDeferred(mocks.NoopLogger)
		require.NoError(t, err)

		rw, err := policy.Rewrite(mocks.GenericEvent(mocks.GenericAction(0), mocks.GenericAction(0)))
		require.NoError(t, err)

		assert.Len(t, rw.Minted, 1)
		assert.Equal(t, rw.Tokens[0], rw.Tokens[1])
		assert.Zero(t, rw.Hits)
		assert.Equal(t, 2, rw.Misses)
	})

	t.Run("overflow reserves pending growth", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewDeferred(mocks.NoopLogger)
		require.NoError(t, err)

		rw, err := policy.Rewrite(mocks.GenericEvent(mocks.GenericAction(0)))
		require.NoError(t, err)

		// The key is 26 bytes long, which reserves ceil(26 / 2.8) = 10 bytes.
		require.Equal(t, 26, rw.MintedSize())
		assert.True(t, policy.Overflow(rw, 10, 0, 19))
		assert.False(t, policy.Overflow(rw, 10, 0, 20))

		_, err = policy.Accept(rw)
		require.NoError(t, err)

		rw, err = policy.Rewrite(mocks.GenericEvent(mocks.GenericAction(0)))
		require.NoError(t, err)

		assert.Zero(t, rw.MintedSize())
		assert.False(t, policy.Overflow(rw, 10, 0, 10))
	})

	t.Run("tokens minted by a record are hits for the next one", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewDeferred(mocks.NoopLogger)
		require.NoError(t, err)

		rewrites := feed(t, policy, scenario())

		assert.Equal(t, 0, rewrites[0].Hits)
		assert.Equal(t, 1, rewrites[1].Hits)
		assert.Equal(t, 1, rewrites[2].Hits)

		gen := policy.BatchEnd()

		assert.Equal(t, 4, gen.Entries)
		assert.Equal(t, 1, gen.UsedEntries)
		assert.Equal(t, 2, gen.Hits)
		assert.Equal(t, 4, gen.Misses)
	})
}
