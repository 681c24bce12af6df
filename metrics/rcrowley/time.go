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

package rcrowley

import (
	"sort"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
)

// Time measures how long each processor spends on records.
type Time struct {
	title    string
	registry metrics.Registry
}

func NewTime(title string) *Time {
	t := Time{
		title:    title,
		registry: metrics.NewRegistry(),
	}
	return &t
}

// Duration starts timing one record for the named processor and returns the
// function that stops it.
func (t *Time) Duration(name string) func() {
	timer := metrics.GetOrRegisterTimer(name, t.registry)
	start := time.Now()
	return func() {
		timer.UpdateSince(start)
	}
}

// Count returns the number of records timed for the named processor.
func (t *Time) Count(name string) int64 {
	timer, ok := t.registry.Get(name).(metrics.Timer)
	if !ok {
		return 0
	}
	return timer.Count()
}

func (t *Time) Output(log zerolog.Logger) {

	log = log.With().Str("metrics", t.title).Str("type", "time").Logger()

	var names []string
	t.registry.Each(func(name string, _ interface{}) {
		names = append(names, name)
	})
	sort.Strings(names)

	for _, name := range names {
		timer, ok := t.registry.Get(name).(metrics.Timer)
		if !ok {
			continue
		}
		snapshot := timer.Snapshot()
		log.Info().
			Str("name", name).
			Int64("count", snapshot.Count()).
			Dur("mean", time.Duration(snapshot.Mean())).
			Dur("p95", time.Duration(snapshot.Percentile(0.95))).
			Dur("total", time.Duration(snapshot.Sum())).
			Msg("time metrics for one processor")
	}
}
