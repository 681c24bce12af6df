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

	"github.com/optakt/flow-dedup/codec/zbor"
	"github.com/optakt/flow-dedup/dictionary"
	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
	"github.com/optakt/flow-dedup/testing/mocks"
)

// scenario returns three records that share action A and each carry one action
// that appears nowhere else.
func scenario() []*decision.Event {
	return []*decision.Event{
		mocks.GenericEvent(mocks.GenericAction(0), mocks.GenericAction(1)),
		mocks.GenericEvent(mocks.GenericAction(0), mocks.GenericAction(2)),
		mocks.GenericEvent(mocks.GenericAction(0), mocks.GenericAction(3)),
	}
}

func feed(t *testing.T, policy sim.Policy, events []*decision.Event) []*sim.Rewrite {
	t.Helper()

	var rewrites []*sim.Rewrite
	for _, event := range events {
		rw, err := policy.Rewrite(event)
		require.NoError(t, err)
		_, err = policy.Accept(rw)
		require.NoError(t, err)
		rewrites = append(rewrites, rw)
	}
	return rewrites
}

func TestNewSnapshot(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, 1024)

		require.NoError(t, err)
		assert.Zero(t, policy.Len())
		assert.True(t, policy.Reprocess())
	})

	t.Run("handles zero budget", func(t *testing.T) {
		t.Parallel()

		_, err := dictionary.NewSnapshot(mocks.NoopLogger, 0)

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})

	t.Run("handles negative budget", func(t *testing.T) {
		t.Parallel()

		_, err := dictionary.NewSnapshot(mocks.NoopLogger, -1)

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})
}

func TestSnapshot(t *testing.T) {
	keyA, err := decision.Canonical(scenario()[0].Actions[0])
	require.NoError(t, err)

	t.Run("first batch has no hits", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, len(keyA))
		require.NoError(t, err)

		dump, err := policy.BatchStart()
		require.NoError(t, err)
		assert.Nil(t, dump)

		events := scenario()
		rewrites := feed(t, policy, events)
		for i, rw := range rewrites {
			assert.Equal(t, events[i].Raw, rw.Payload)
			assert.Equal(t, []string{"", ""}, rw.Tokens)
			assert.Empty(t, rw.Minted)
		}

		gen := policy.BatchEnd()

		require.NotNil(t, gen)
		assert.Zero(t, gen.Entries)
		assert.Zero(t, gen.UsedEntries)
		assert.Zero(t, gen.Hits)
		assert.Equal(t, 6, gen.Misses)
	})

	t.Run("second batch substitutes the shared action", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, len(keyA))
		require.NoError(t, err)

		feed(t, policy, scenario())
		policy.BatchEnd()

		require.Equal(t, 1, policy.Len())
		key, ok := policy.Lookup("#1")
		require.True(t, ok)
		assert.Equal(t, keyA, key)

		dump, err := policy.BatchStart()
		require.NoError(t, err)
		var lookup map[string]string
		err = zbor.NewCodec(3).Decode(dump, &lookup)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"#1": keyA}, lookup)

		rewrites := feed(t, policy, scenario())
		assert.Equal(t, `{"Version":"1","c":{"TShared":{"c_0":1},"_multi":["#1",{"f_0":1,"f_1":"action-1"}]}}`, string(rewrites[0].Payload))
		for _, rw := range rewrites {
			assert.Equal(t, 1, rw.Hits)
			assert.Equal(t, 1, rw.Misses)
			assert.Less(t, len(rw.Payload), len(scenario()[0].Raw))
		}

		gen := policy.BatchEnd()

		require.NotNil(t, gen)
		assert.Equal(t, 1, gen.Entries)
		assert.Equal(t, 1, gen.UsedEntries)
		assert.Equal(t, 3, gen.Hits)
		assert.Equal(t, 3, gen.Misses)
	})

	t.Run("larger budget keeps the single actions", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, 10*len(keyA))
		require.NoError(t, err)

		feed(t, policy, scenario())
		policy.BatchEnd()

		assert.Equal(t, 4, policy.Len())
	})

	t.Run("rewrite does not touch state", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, len(keyA))
		require.NoError(t, err)

		for _, event := range scenario() {
			_, err := policy.Rewrite(event)
			require.NoError(t, err)
		}
		gen := policy.BatchEnd()

		assert.Zero(t, gen.Misses)
		assert.Zero(t, policy.Len())
	})

	t.Run("substituted actions drop out of the next generation", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, len(keyA))
		require.NoError(t, err)
		events := []*decision.Event{mocks.GenericEvent(mocks.GenericAction(0))}

		feed(t, policy, events)
		gen := policy.BatchEnd()
		assert.Equal(t, &sim.Generation{Entries: 0, UsedEntries: 0, Hits: 0, Misses: 1}, gen)
		require.Equal(t, 1, policy.Len())

		feed(t, policy, events)
		gen = policy.BatchEnd()
		assert.Equal(t, &sim.Generation{Entries: 1, UsedEntries: 1, Hits: 1, Misses: 0}, gen)
		assert.Zero(t, policy.Len())

		feed(t, policy, events)
		gen = policy.BatchEnd()
		assert.Equal(t, &sim.Generation{Entries: 0, UsedEntries: 0, Hits: 0, Misses: 1}, gen)
		assert.Equal(t, 1, policy.Len())
	})

	t.Run("misses replace substituted actions", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, len(keyA))
		require.NoError(t, err)

		feed(t, policy, scenario())
		policy.BatchEnd()
		require.Equal(t, 1, policy.Len())

		// A is only seen as a hit now, so the next generation holds the best
		// ranked of the single actions instead.
		feed(t, policy, scenario())
		policy.BatchEnd()

		require.Equal(t, 1, policy.Len())
		_, ok := policy.Lookup("#1")
		assert.False(t, ok)
		key, ok := policy.Lookup("#2")
		require.True(t, ok)
		assert.NotEqual(t, keyA, key)
	})

	t.Run("all actions keeps substituted actions", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, len(keyA), dictionary.WithAllActions(true))
		require.NoError(t, err)

		feed(t, policy, scenario())
		policy.BatchEnd()
		feed(t, policy, scenario())
		policy.BatchEnd()

		require.Equal(t, 1, policy.Len())
		key, ok := policy.Lookup("#2")
		require.True(t, ok)
		assert.Equal(t, keyA, key)

		feed(t, policy, scenario())
		gen := policy.BatchEnd()

		assert.Equal(t, 3, gen.Hits)
		assert.Equal(t, 3, gen.Misses)
	})

	t.Run("tokens are reversible", func(t *testing.T) {
		t.Parallel()

		policy, err := dictionary.NewSnapshot(mocks.NoopLogger, 1024, dictionary.WithMinter(dictionary.NewHash()))
		require.NoError(t, err)

		for round := 0; round < 3; round++ {
			for _, event := range scenario() {
				rw, err := policy.Rewrite(event)
				require.NoError(t, err)
				for i, token := range rw.Tokens {
					if token == "" {
						continue
					}
					key, ok := policy.Lookup(token)
					require.True(t, ok)
					assert.Equal(t, rw.Keys[i], key)
				}
				_, err = policy.Accept(rw)
				require.NoError(t, err)
			}
			policy.BatchEnd()
		}
	})
}
