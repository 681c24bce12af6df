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

package generator_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/flow-dedup/codec/generator"
	"github.com/optakt/flow-dedup/testing/mocks"
)

func TestGenerator_Train(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		g := generator.New(mocks.NoopLogger)

		dict, err := g.Train(mocks.GenericCorpus(1, 400, 100), 4096)

		require.NoError(t, err)
		assert.NotEmpty(t, dict.Raw)
		assert.Equal(t, 4096, dict.Size)
	})

	t.Run("handles no samples", func(t *testing.T) {
		t.Parallel()

		g := generator.New(mocks.NoopLogger)

		_, err := g.Train(nil, 1024)

		assert.Error(t, err)
	})
}

func TestGenerator_Benchmark(t *testing.T) {
	t.Run("baseline ratio", func(t *testing.T) {
		t.Parallel()

		g := generator.New(mocks.NoopLogger)
		samples := [][]byte{
			bytes.Repeat([]byte("abcd"), 250),
			bytes.Repeat(mocks.GenericLine, 10),
		}
		baseline := &generator.Dictionary{}

		err := g.Benchmark(baseline, samples)

		require.NoError(t, err)
		assert.Greater(t, baseline.Ratio, 0.0)
		assert.Less(t, baseline.Ratio, 1.0)
	})

	t.Run("handles no samples", func(t *testing.T) {
		t.Parallel()

		g := generator.New(mocks.NoopLogger)

		err := g.Benchmark(&generator.Dictionary{}, nil)

		assert.Error(t, err)
	})
}

func TestGenerator_Optimize(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		g := generator.New(mocks.NoopLogger,
			generator.WithStartSize(1024),
			generator.WithMaxSize(4096),
			generator.WithRatioImprovementTolerance(0),
		)
		samples := mocks.GenericCorpus(1, 400, 100)
		baseline := &generator.Dictionary{}
		err := g.Benchmark(baseline, samples)
		require.NoError(t, err)

		dict, err := g.Optimize(samples)

		require.NoError(t, err)
		assert.NotEmpty(t, dict.Raw)
		assert.GreaterOrEqual(t, dict.Size, 1024)
		assert.LessOrEqual(t, dict.Size, 4096)
		assert.Less(t, dict.Ratio, baseline.Ratio)
	})

	t.Run("handles no samples", func(t *testing.T) {
		t.Parallel()

		g := generator.New(mocks.NoopLogger)

		_, err := g.Optimize(nil)

		assert.Error(t, err)
	})
}
