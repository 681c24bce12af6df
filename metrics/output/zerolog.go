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

package output

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/metrics"
)

// Output reports the state of its collectors at a fixed interval while a
// simulation runs, and a final time once it stops.
type Output struct {
	log        zerolog.Logger
	interval   time.Duration
	collectors []metrics.Collector
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(log zerolog.Logger, interval time.Duration) *Output {
	o := Output{
		log:      log.With().Str("component", "metrics").Logger(),
		interval: interval,
		done:     make(chan struct{}),
	}
	return &o
}

// Register adds collectors. It must be called before Run.
func (o *Output) Register(collectors ...metrics.Collector) {
	o.collectors = append(o.collectors, collectors...)
}

// Run starts reporting until the context is canceled or Stop is called.
func (o *Output) Run(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)
	go o.report(ctx)
}

// Stop ends reporting and waits for the final report to be written.
func (o *Output) Stop() {
	if o.cancel == nil {
		return
	}
	o.cancel()
	<-o.done
}

func (o *Output) report(ctx context.Context) {
	defer close(o.done)

	start := time.Now()
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	reports := 0
	for {
		select {
		case <-ctx.Done():
			o.print(reports, time.Since(start), true)
			return
		case <-ticker.C:
			reports++
			o.print(reports, time.Since(start), false)
		}
	}
}

func (o *Output) print(reports int, elapsed time.Duration, final bool) {
	log := o.log.With().
		Int("report", reports).
		Dur("elapsed", elapsed).
		Bool("final", final).
		Logger()
	for _, collector := range o.collectors {
		collector.Output(log)
	}
}
