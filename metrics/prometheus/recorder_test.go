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

package prometheus_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metrics "github.com/optakt/flow-dedup/metrics/prometheus"
	"github.com/optakt/flow-dedup/models/sim"
)

func TestRecorder(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		registry := prometheus.NewRegistry()
		recorder, err := metrics.NewRecorder(registry)
		require.NoError(t, err)

		recorder.Batch("raw", sim.Batch{RawSize: 100, TotalSize: 100})
		recorder.Batch("snapshot_zstd", sim.Batch{
			RawSize:    100,
			TotalSize:  30,
			HeaderSize: 4,
			Generation: &sim.Generation{Hits: 3, Misses: 1},
		})
		recorder.Batch("snapshot_zstd", sim.Batch{
			RawSize:    100,
			TotalSize:  20,
			Generation: &sim.Generation{Hits: 4},
		})

		count, err := testutil.GatherAndCount(registry, "dedup_batches_total")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		problems, err := testutil.GatherAndLint(registry)
		require.NoError(t, err)
		assert.Empty(t, problems)
	})

	t.Run("handles duplicate registration", func(t *testing.T) {
		t.Parallel()

		registry := prometheus.NewRegistry()
		_, err := metrics.NewRecorder(registry)
		require.NoError(t, err)

		_, err = metrics.NewRecorder(registry)

		assert.Error(t, err)
	})
}
