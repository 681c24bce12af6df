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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/flow-dedup/metrics/output"
	"github.com/optakt/flow-dedup/metrics/prometheus"
	"github.com/optakt/flow-dedup/metrics/rcrowley"
	"github.com/optakt/flow-dedup/processor"
	"github.com/optakt/flow-dedup/simulation"
	"github.com/optakt/flow-dedup/stats"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Command line parameter initialization.
	var (
		flagBatchSize     int
		flagChargeOnClose bool
		flagAdaptive      bool
		flagDictSize      int
		flagGrowthRatio   float64
		flagHashTokens    bool
		flagInterval      time.Duration
		flagLevel         string
		flagMetrics       string
		flagAllActions    bool
		flagModelFile     string
		flagModelSize     int
		flagProcessors    []string
		flagTrainRaw      bool
		flagWindow        int
		flagZstdLevel     int
	)

	pflag.IntVarP(&flagBatchSize, "batch-size", "b", processor.DefaultConfig.MaxBatchSize, "maximum size of a batch in bytes")
	pflag.BoolVar(&flagChargeOnClose, "charge-on-close", false, "charge trained models to the batch that trained them instead of the next one")
	pflag.BoolVar(&flagAdaptive, "adaptive-model", false, "search for the smallest useful model size instead of always using the maximum")
	pflag.IntVarP(&flagDictSize, "dict-size", "d", 8*1024, "maximum total key length of snapshot dictionaries in bytes")
	pflag.Float64Var(&flagGrowthRatio, "growth-ratio", 2.8, "compression ratio assumed for pending dictionary entries")
	pflag.BoolVar(&flagHashTokens, "hash-tokens", false, "derive tokens from content hashes instead of a counter")
	pflag.DurationVar(&flagInterval, "interval", 0, "interval for logging metrics while running (0 disables)")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "m", "", "address on which to expose prometheus metrics (empty disables)")
	pflag.BoolVar(&flagAllActions, "all-actions", false, "build snapshot dictionaries from substituted actions as well as missed ones")
	pflag.StringVar(&flagModelFile, "model-file", "", "model trained ahead of time to start trained processors with")
	pflag.IntVar(&flagModelSize, "model-size", 16*1024, "maximum size of trained models in bytes")
	pflag.StringSliceVarP(&flagProcessors, "processors", "p", names, "processors to run for each client")
	pflag.BoolVar(&flagTrainRaw, "train-raw", false, "train models on raw log lines instead of rewritten payloads")
	pflag.IntVarP(&flagWindow, "window", "w", 400, "number of recent records used to train models")
	pflag.IntVarP(&flagZstdLevel, "zstd-level", "z", 3, "zstd level for dictionary and trained processors")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	files := pflag.Args()
	if len(files) == 0 {
		log.Error().Msg("no log files given")
		return failure
	}

	var model []byte
	if flagModelFile != "" {
		model, err = os.ReadFile(flagModelFile)
		if err != nil {
			log.Error().Str("model_file", flagModelFile).Err(err).Msg("could not read model")
			return failure
		}
	}

	settings := Settings{
		Model:         model,
		DictSize:      flagDictSize,
		ModelSize:     flagModelSize,
		Window:        flagWindow,
		ZstdLevel:     flagZstdLevel,
		GrowthRatio:   flagGrowthRatio,
		HashTokens:    flagHashTokens,
		AllActions:    flagAllActions,
		Adaptive:      flagAdaptive,
		ChargeOnClose: flagChargeOnClose,
	}

	// Options shared by all processors of all clients.
	aggregator := stats.NewAggregator()
	size := rcrowley.NewSize("batches")
	timer := rcrowley.NewTime("processing")
	shared := []processor.Option{
		processor.WithRawTraining(flagTrainRaw),
		processor.WithObserver(aggregator),
		processor.WithObserver(size),
	}

	if flagMetrics != "" {
		registry := prom.NewRegistry()
		recorder, err := prometheus.NewRecorder(registry)
		if err != nil {
			log.Error().Err(err).Msg("could not register prometheus metrics")
			return failure
		}
		shared = append(shared, processor.WithObserver(recorder))

		server := prometheus.NewServer(log, flagMetrics, registry)
		go func() {
			err := server.Start()
			if err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = server.Stop(ctx)
		}()
	}

	// One client per log file, each with its own set of processors.
	var jobs []simulation.Job
	for id, name := range files {
		file, err := os.Open(name)
		if err != nil {
			log.Error().Str("file", name).Err(err).Msg("could not open log file")
			return failure
		}
		defer file.Close()

		client := simulation.NewClient(log, id, simulation.WithTimer(timer))
		for _, proc := range flagProcessors {
			create, err := lookup(proc)
			if err != nil {
				log.Error().Err(err).Msg("could not look up processor")
				return failure
			}
			policy, estimate, err := create(log, settings)
			if err != nil {
				log.Error().Str("processor", proc).Err(err).Msg("could not create processor")
				return failure
			}
			label := fmt.Sprintf("client_%d/%s", id, proc)
			opts := append([]processor.Option{processor.WithMaxBatchSize(flagBatchSize)}, shared...)
			p, err := processor.New(log, label, policy, estimate, opts...)
			if err != nil {
				log.Error().Str("processor", proc).Err(err).Msg("could not initialize processor")
				return failure
			}
			client.Add(p)
		}

		jobs = append(jobs, simulation.Job{Client: client, Source: simulation.NewLines(file)})
	}

	// Signal catching for early stop; open batches are still finalized.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	out := output.New(log, flagInterval)
	if flagInterval > 0 {
		out.Register(size, timer)
		out.Run(ctx)
	}

	start := time.Now()
	err = simulation.Run(ctx, jobs)
	out.Stop()
	if err != nil {
		log.Error().Err(err).Msg("simulation failed")
		return failure
	}

	log.Info().Dur("duration", time.Since(start)).Int("clients", len(jobs)).Msg("simulation complete")

	summaries, err := aggregator.Summaries()
	if err != nil {
		log.Error().Err(err).Msg("could not summarize batches")
		return failure
	}
	for _, summary := range summaries {
		event := log.Info().
			Str("label", summary.Label).
			Int("batches", summary.BatchCount).
			Float64("mean_ratio", summary.MeanRatio).
			Float64("p50_ratio", summary.Ratio.P50).
			Float64("mean_lines", summary.MeanLines).
			Float64("mean_header_bytes", summary.MeanHeaderBytes).
			Float64("mean_batch_size", summary.MeanBatchSize)
		if summary.Dedup != nil {
			event = event.
				Float64("mean_dict_lines", summary.Dedup.MeanDictLines).
				Float64("mean_dict_hit_ratio", summary.Dedup.MeanDictHitRatio).
				Float64("mean_action_hit_ratio", summary.Dedup.MeanActionHitRatio)
		}
		event.Msg("processor summary")
	}

	return success
}
