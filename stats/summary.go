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

package stats

import (
	"fmt"

	"github.com/rcrowley/go-metrics"

	"github.com/optakt/flow-dedup/models/sim"
)

// Ratios are stored in integer histograms with this precision.
const ratioScale = 1_000_000

var quantiles = []float64{0.25, 0.5, 0.75, 0.95}

// Percentiles holds the distribution of a per-batch value.
type Percentiles struct {
	P25 float64
	P50 float64
	P75 float64
	P95 float64
}

// Dedup holds the statistics only available for processors with a dictionary.
type Dedup struct {
	MeanDictLines      float64
	MeanDictHitRatio   float64
	MeanActionHitRatio float64
}

// Summary is the aggregate of all finalized batches of a processor.
type Summary struct {
	Label           string
	BatchCount      int
	MeanRatio       float64
	MeanLines       float64
	MeanHeaderBytes float64
	MeanBatchSize   float64

	Ratio Percentiles
	Size  Percentiles

	// Dedup is nil for processors without a dictionary.
	Dedup *Dedup
}

// Summarize aggregates the given batches. Summarizing zero batches fails with
// sim.ErrNoData.
func Summarize(label string, batches []sim.Batch) (*Summary, error) {

	if len(batches) == 0 {
		return nil, fmt.Errorf("could not summarize %s: %w", label, sim.ErrNoData)
	}

	ratios := metrics.NewHistogram(metrics.NewUniformSample(len(batches)))
	sizes := metrics.NewHistogram(metrics.NewUniformSample(len(batches)))

	var ratioSum, lineSum, headerSum, sizeSum float64
	var dedup *dedupSums
	for _, batch := range batches {
		if batch.TotalSize <= 0 {
			return nil, fmt.Errorf("could not summarize %s: batch %d has no size", label, batch.Index)
		}

		ratio := float64(batch.RawSize) / float64(batch.TotalSize)
		ratios.Update(int64(ratio * ratioScale))
		sizes.Update(int64(batch.TotalSize))

		ratioSum += ratio
		lineSum += float64(batch.LineCount)
		headerSum += float64(batch.HeaderSize)
		sizeSum += float64(batch.TotalSize)

		if batch.Generation == nil {
			continue
		}
		if dedup == nil {
			dedup = &dedupSums{}
		}
		dedup.add(batch.Generation)
	}

	count := float64(len(batches))
	s := Summary{
		Label:           label,
		BatchCount:      len(batches),
		MeanRatio:       ratioSum / count,
		MeanLines:       lineSum / count,
		MeanHeaderBytes: headerSum / count,
		MeanBatchSize:   sizeSum / count,
		Ratio:           percentiles(ratios, ratioScale),
		Size:            percentiles(sizes, 1),
	}
	if dedup != nil {
		s.Dedup = dedup.summary()
	}

	return &s, nil
}

func percentiles(h metrics.Histogram, scale float64) Percentiles {
	values := h.Percentiles(quantiles)
	p := Percentiles{
		P25: values[0] / scale,
		P50: values[1] / scale,
		P75: values[2] / scale,
		P95: values[3] / scale,
	}
	return p
}

// dedupSums accumulates dictionary statistics. Ratios whose denominator is zero
// are left out of the respective mean.
type dedupSums struct {
	batches    int
	entries    float64
	dictRatios []float64
	hitRatios  []float64
}

func (d *dedupSums) add(gen *sim.Generation) {
	d.batches++
	d.entries += float64(gen.Entries)
	if gen.Entries > 0 {
		d.dictRatios = append(d.dictRatios, float64(gen.UsedEntries)/float64(gen.Entries))
	}
	if gen.Hits+gen.Misses > 0 {
		d.hitRatios = append(d.hitRatios, float64(gen.Hits)/float64(gen.Hits+gen.Misses))
	}
}

func (d *dedupSums) summary() *Dedup {
	s := Dedup{
		MeanDictLines:      d.entries / float64(d.batches),
		MeanDictHitRatio:   mean(d.dictRatios),
		MeanActionHitRatio: mean(d.hitRatios),
	}
	return &s
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}
