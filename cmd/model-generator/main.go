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
	"errors"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/flow-dedup/codec/generator"
	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/simulation"
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
		flagLevel      string
		flagMaxSize    int
		flagOutput     string
		flagSampleSize int
		flagSeed       int64
		flagStartSize  int
		flagTolerance  float64
		flagZstdLevel  int
	)

	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.IntVar(&flagMaxSize, "max-size", 64*1024, "maximum model size to generate")
	pflag.StringVarP(&flagOutput, "output", "o", "model.zstd", "path of the file to write the model to")
	pflag.IntVar(&flagSampleSize, "sample-size", 10*1024*1024, "total size of the records used for training (higher values increase accuracy at the expense of speed)")
	pflag.Int64Var(&flagSeed, "seed", 0, "seed for picking training records (0 uses the current time)")
	pflag.IntVar(&flagStartSize, "start-size", 512, "minimum model size to generate (will be doubled on each iteration)")
	pflag.Float64Var(&flagTolerance, "tolerance", 0.1, "compression ratio increase tolerance (between 0 and 1)")
	pflag.IntVarP(&flagZstdLevel, "zstd-level", "z", 3, "zstd level used to benchmark models")

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

	// Only well-formed records are used for training, so the model matches what
	// the simulation would see.
	var records [][]byte
	for _, name := range files {
		file, err := os.Open(name)
		if err != nil {
			log.Error().Str("file", name).Err(err).Msg("could not open log file")
			return failure
		}
		source := simulation.NewLines(file)
		for {
			line, err := source.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				log.Error().Str("file", name).Err(err).Msg("could not read log file")
				_ = file.Close()
				return failure
			}
			event, err := decision.Parse(line)
			if err != nil {
				log.Error().Str("file", name).Int("record", len(records)).Err(err).Msg("could not parse record")
				_ = file.Close()
				return failure
			}
			records = append(records, event.Raw)
		}
		_ = file.Close()
	}

	if flagSeed == 0 {
		flagSeed = time.Now().UnixNano()
	}
	random := rand.New(rand.NewSource(flagSeed))
	random.Shuffle(len(records), func(i int, j int) {
		records[i], records[j] = records[j], records[i]
	})

	var samples [][]byte
	total := 0
	for _, record := range records {
		if total >= flagSampleSize {
			break
		}
		samples = append(samples, record)
		total += len(record)
	}

	log.Info().
		Int("records", len(records)).
		Int("samples", len(samples)).
		Int("total", total).
		Int64("seed", flagSeed).
		Msg("picked training records")

	generate := generator.New(
		log,
		generator.WithStartSize(flagStartSize),
		generator.WithMaxSize(flagMaxSize),
		generator.WithRatioImprovementTolerance(flagTolerance),
		generator.WithLevel(flagZstdLevel),
	)

	dict, err := generate.Optimize(samples)
	if err != nil {
		log.Error().Err(err).Msg("could not generate model")
		return failure
	}

	err = os.WriteFile(flagOutput, dict.Raw, 0644)
	if err != nil {
		log.Error().Str("output", flagOutput).Err(err).Msg("could not write model")
		return failure
	}

	log.Info().
		Str("output", flagOutput).
		Int("size", len(dict.Raw)).
		Float64("ratio", dict.Ratio).
		Msg("model written")

	return success
}
