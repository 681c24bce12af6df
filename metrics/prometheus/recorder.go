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

package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/optakt/flow-dedup/models/sim"
)

const labelProcessor = "processor"

// Recorder exposes counters about finalized batches to Prometheus.
type Recorder struct {
	batches *prometheus.CounterVec
	raw     *prometheus.CounterVec
	total   *prometheus.CounterVec
	header  *prometheus.CounterVec
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them with the given registerer.
func NewRecorder(registerer prometheus.Registerer) (*Recorder, error) {

	batchOpts := prometheus.CounterOpts{
		Name: "dedup_batches_total",
		Help: "the number of finalized batches",
	}
	rawOpts := prometheus.CounterOpts{
		Name: "dedup_raw_bytes_total",
		Help: "the number of raw bytes in finalized batches",
	}
	totalOpts := prometheus.CounterOpts{
		Name: "dedup_estimated_bytes_total",
		Help: "the number of estimated bytes in finalized batches, headers included",
	}
	headerOpts := prometheus.CounterOpts{
		Name: "dedup_header_bytes_total",
		Help: "the number of header bytes in finalized batches",
	}
	hitOpts := prometheus.CounterOpts{
		Name: "dedup_action_hits_total",
		Help: "the number of actions substituted by a dictionary token",
	}
	missOpts := prometheus.CounterOpts{
		Name: "dedup_action_misses_total",
		Help: "the number of actions not found in the dictionary",
	}

	r := Recorder{
		batches: prometheus.NewCounterVec(batchOpts, []string{labelProcessor}),
		raw:     prometheus.NewCounterVec(rawOpts, []string{labelProcessor}),
		total:   prometheus.NewCounterVec(totalOpts, []string{labelProcessor}),
		header:  prometheus.NewCounterVec(headerOpts, []string{labelProcessor}),
		hits:    prometheus.NewCounterVec(hitOpts, []string{labelProcessor}),
		misses:  prometheus.NewCounterVec(missOpts, []string{labelProcessor}),
	}

	collectors := []prometheus.Collector{r.batches, r.raw, r.total, r.header, r.hits, r.misses}
	for _, collector := range collectors {
		err := registerer.Register(collector)
		if err != nil {
			return nil, err
		}
	}

	return &r, nil
}

// Batch implements the sim.Observer interface.
func (r *Recorder) Batch(label string, batch sim.Batch) {
	r.batches.WithLabelValues(label).Inc()
	r.raw.WithLabelValues(label).Add(float64(batch.RawSize))
	r.total.WithLabelValues(label).Add(float64(batch.TotalSize))
	r.header.WithLabelValues(label).Add(float64(batch.HeaderSize))
	if batch.Generation != nil {
		r.hits.WithLabelValues(label).Add(float64(batch.Generation.Hits))
		r.misses.WithLabelValues(label).Add(float64(batch.Generation.Misses))
	}
}
