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

package estimator_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/flow-dedup/codec/generator"
	"github.com/optakt/flow-dedup/codec/zbor"
	"github.com/optakt/flow-dedup/estimator"
	"github.com/optakt/flow-dedup/models/sim"
	"github.com/optakt/flow-dedup/testing/mocks"
)

func TestRaw(t *testing.T) {
	t.Run("returns length", func(t *testing.T) {
		t.Parallel()

		raw := estimator.NewRaw()

		size, err := raw.Estimate(mocks.GenericLine)

		require.NoError(t, err)
		assert.Equal(t, len(mocks.GenericLine), size)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		raw := estimator.NewRaw()

		first, err := raw.Estimate(mocks.GenericLine)
		require.NoError(t, err)
		raw.Observe(mocks.GenericLine)
		_, err = raw.BatchEnd()
		require.NoError(t, err)
		second, err := raw.Estimate(mocks.GenericLine)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("no header", func(t *testing.T) {
		t.Parallel()

		raw := estimator.NewRaw()

		start, err := raw.BatchStart()
		require.NoError(t, err)
		end, err := raw.BatchEnd()
		require.NoError(t, err)

		assert.Zero(t, start)
		assert.Zero(t, end)
	})
}

func TestParseAlgorithm(t *testing.T) {
	t.Run("known names", func(t *testing.T) {
		t.Parallel()

		for _, algorithm := range []estimator.Algorithm{estimator.AlgorithmZstd, estimator.AlgorithmZlib, estimator.AlgorithmS2} {
			parsed, err := estimator.ParseAlgorithm(algorithm.String())
			require.NoError(t, err)
			assert.Equal(t, algorithm, parsed)
		}
	})

	t.Run("handles unknown name", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.ParseAlgorithm("lz4")

		assert.Error(t, err)
	})
}

func TestNewGeneric(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		generic, err := estimator.NewGeneric(estimator.AlgorithmZstd, 3)

		require.NoError(t, err)
		assert.Equal(t, "zstd_3", generic.Label())
	})

	t.Run("handles invalid zlib level", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.NewGeneric(estimator.AlgorithmZlib, 10)

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})

	t.Run("handles invalid s2 level", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.NewGeneric(estimator.AlgorithmS2, 0)

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})

	t.Run("handles invalid algorithm", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.NewGeneric(estimator.Algorithm(0), 1)

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})
}

func TestGeneric_Estimate(t *testing.T) {
	payload := bytes.Repeat(mocks.GenericLine, 50)

	generics := []struct {
		algorithm estimator.Algorithm
		level     int
	}{
		{algorithm: estimator.AlgorithmZstd, level: 1},
		{algorithm: estimator.AlgorithmZstd, level: 19},
		{algorithm: estimator.AlgorithmZlib, level: 1},
		{algorithm: estimator.AlgorithmZlib, level: 9},
		{algorithm: estimator.AlgorithmS2, level: 1},
		{algorithm: estimator.AlgorithmS2, level: 2},
		{algorithm: estimator.AlgorithmS2, level: 3},
	}

	for _, g := range generics {
		g := g
		generic, err := estimator.NewGeneric(g.algorithm, g.level)
		require.NoError(t, err)

		t.Run(generic.Label(), func(t *testing.T) {
			t.Parallel()

			first, err := generic.Estimate(payload)
			require.NoError(t, err)
			second, err := generic.Estimate(payload)
			require.NoError(t, err)

			assert.Positive(t, first)
			assert.Less(t, first, len(payload))
			assert.Equal(t, first, second)
		})
	}
}

func TestNewTrained(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		trained, err := estimator.NewTrained(mocks.NoopLogger)

		require.NoError(t, err)
		assert.Nil(t, trained.Model())
	})

	t.Run("handles empty window", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.NewTrained(mocks.NoopLogger, estimator.WithWindow(0))

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})

	t.Run("handles tiny model size", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.NewTrained(mocks.NoopLogger, estimator.WithMaxModelSize(100))

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})

	t.Run("handles invalid level", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.NewTrained(mocks.NoopLogger, estimator.WithLevel(23))

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})

	t.Run("starts with initial model", func(t *testing.T) {
		t.Parallel()

		dict, err := generator.New(mocks.NoopLogger).Train(mocks.GenericCorpus(1, 400, 100), estimator.DefaultConfig.MaxModelSize)
		require.NoError(t, err)
		fresh := mocks.GenericCorpus(2, 1, 100)[0]
		fallback, err := estimator.NewTrained(mocks.NoopLogger)
		require.NoError(t, err)

		trained, err := estimator.NewTrained(mocks.NoopLogger, estimator.WithModel(dict.Raw))
		require.NoError(t, err)

		assert.Equal(t, dict.Raw, trained.Model())

		header, err := trained.BatchStart()
		require.NoError(t, err)
		assert.Equal(t, len(zbor.NewCodec(estimator.DefaultConfig.Level).Compress(dict.Raw)), header)

		want, err := fallback.Estimate(fresh)
		require.NoError(t, err)
		got, err := trained.Estimate(fresh)
		require.NoError(t, err)
		assert.Less(t, got, want)
	})

	t.Run("handles invalid initial model", func(t *testing.T) {
		t.Parallel()

		_, err := estimator.NewTrained(mocks.NoopLogger, estimator.WithModel([]byte("not a zstd dictionary")))

		assert.ErrorIs(t, err, sim.ErrInvalidConfig)
	})
}

func TestTrained(t *testing.T) {
	t.Run("falls back to one-shot zstd without a model", func(t *testing.T) {
		t.Parallel()

		trained, err := estimator.NewTrained(mocks.NoopLogger)
		require.NoError(t, err)
		generic, err := estimator.NewGeneric(estimator.AlgorithmZstd, estimator.DefaultConfig.Level)
		require.NoError(t, err)

		got, err := trained.Estimate(mocks.GenericLine)
		require.NoError(t, err)
		want, err := generic.Estimate(mocks.GenericLine)
		require.NoError(t, err)

		assert.Equal(t, want, got)
	})

	t.Run("keeps falling back when training has no samples", func(t *testing.T) {
		t.Parallel()

		trained, err := estimator.NewTrained(mocks.NoopLogger, estimator.WithChargeOnClose(true))
		require.NoError(t, err)

		header, err := trained.BatchEnd()

		require.NoError(t, err)
		assert.Zero(t, header)
		assert.Nil(t, trained.Model())

		header, err = trained.BatchStart()

		require.NoError(t, err)
		assert.Zero(t, header)
	})

	t.Run("trains a model when the batch ends", func(t *testing.T) {
		t.Parallel()

		trained, err := estimator.NewTrained(mocks.NoopLogger)
		require.NoError(t, err)
		for _, line := range mocks.GenericCorpus(1, 400, 100) {
			trained.Observe(line)
		}

		header, err := trained.BatchEnd()

		require.NoError(t, err)
		assert.Zero(t, header)
		require.NotNil(t, trained.Model())

		header, err = trained.BatchStart()

		require.NoError(t, err)
		assert.Positive(t, header)
		assert.Equal(t, len(zbor.NewCodec(estimator.DefaultConfig.Level).Compress(trained.Model())), header)

		header, err = trained.BatchStart()

		require.NoError(t, err)
		assert.Zero(t, header)
	})

	t.Run("charges the model on close when asked", func(t *testing.T) {
		t.Parallel()

		trained, err := estimator.NewTrained(mocks.NoopLogger, estimator.WithChargeOnClose(true))
		require.NoError(t, err)
		for _, line := range mocks.GenericCorpus(1, 400, 100) {
			trained.Observe(line)
		}

		header, err := trained.BatchEnd()

		require.NoError(t, err)
		require.NotNil(t, trained.Model())
		assert.Equal(t, len(zbor.NewCodec(estimator.DefaultConfig.Level).Compress(trained.Model())), header)

		header, err = trained.BatchStart()

		require.NoError(t, err)
		assert.Zero(t, header)
	})

	t.Run("model beats one-shot estimate", func(t *testing.T) {
		t.Parallel()

		trained, err := estimator.NewTrained(mocks.NoopLogger)
		require.NoError(t, err)
		fresh := mocks.GenericCorpus(2, 1, 100)[0]

		before, err := trained.Estimate(fresh)
		require.NoError(t, err)

		for _, line := range mocks.GenericCorpus(1, 400, 100) {
			trained.Observe(line)
		}
		_, err = trained.BatchEnd()
		require.NoError(t, err)

		after, err := trained.Estimate(fresh)
		require.NoError(t, err)

		assert.Less(t, after, before)
	})

	t.Run("adaptive training finds a model", func(t *testing.T) {
		t.Parallel()

		trained, err := estimator.NewTrained(mocks.NoopLogger,
			estimator.WithAdaptive(true),
			estimator.WithMaxModelSize(4096),
		)
		require.NoError(t, err)
		for _, line := range mocks.GenericCorpus(1, 400, 15) {
			trained.Observe(line)
		}

		_, err = trained.BatchEnd()

		require.NoError(t, err)
		assert.NotNil(t, trained.Model())

		header, err := trained.BatchStart()

		require.NoError(t, err)
		assert.Positive(t, header)
	})
}
