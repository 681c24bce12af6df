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
	"fmt"

	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/dictionary"
	"github.com/optakt/flow-dedup/estimator"
	"github.com/optakt/flow-dedup/models/sim"
)

// Settings holds the values of the command line flags that shape processors.
type Settings struct {
	DictSize      int
	ModelSize     int
	Window        int
	ZstdLevel     int
	GrowthRatio   float64
	HashTokens    bool
	AllActions    bool
	Adaptive      bool
	ChargeOnClose bool
	Model         []byte
}

// factory creates the policy and estimator of one processor.
type factory func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error)

// names lists the processors in the order they are reported.
var names = []string{
	"raw",
	"zlib_1", "zlib_6", "zlib_9",
	"zstd_1", "zstd_3", "zstd_19",
	"s2_1",
	"zstd_trained",
	"snapshot_raw", "snapshot_zstd", "snapshot_trained",
	"incremental_zstd", "deferred_zstd",
}

var factories = map[string]factory{
	"raw": func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		return dictionary.NewPassthrough(), estimator.NewRaw(), nil
	},
	"zlib_1":  generic(estimator.AlgorithmZlib, 1),
	"zlib_6":  generic(estimator.AlgorithmZlib, 6),
	"zlib_9":  generic(estimator.AlgorithmZlib, 9),
	"zstd_1":  generic(estimator.AlgorithmZstd, 1),
	"zstd_3":  generic(estimator.AlgorithmZstd, 3),
	"zstd_19": generic(estimator.AlgorithmZstd, 19),
	"s2_1":    generic(estimator.AlgorithmS2, 1),
	"zstd_trained": func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		estimate, err := trained(log, s)
		if err != nil {
			return nil, nil, err
		}
		return dictionary.NewPassthrough(), estimate, nil
	},
	"snapshot_raw": func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		policy, err := dictionary.NewSnapshot(log, s.DictSize, options(s)...)
		if err != nil {
			return nil, nil, err
		}
		return policy, estimator.NewRaw(), nil
	},
	"snapshot_zstd": func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		policy, err := dictionary.NewSnapshot(log, s.DictSize, options(s)...)
		if err != nil {
			return nil, nil, err
		}
		estimate, err := estimator.NewGeneric(estimator.AlgorithmZstd, s.ZstdLevel)
		if err != nil {
			return nil, nil, err
		}
		return policy, estimate, nil
	},
	"snapshot_trained": func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		policy, err := dictionary.NewSnapshot(log, s.DictSize, options(s)...)
		if err != nil {
			return nil, nil, err
		}
		estimate, err := trained(log, s)
		if err != nil {
			return nil, nil, err
		}
		return policy, estimate, nil
	},
	"incremental_zstd": func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		policy := dictionary.NewIncremental(log, options(s)...)
		estimate, err := estimator.NewGeneric(estimator.AlgorithmZstd, s.ZstdLevel)
		if err != nil {
			return nil, nil, err
		}
		return policy, estimate, nil
	},
	"deferred_zstd": func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		policy, err := dictionary.NewDeferred(log, options(s)...)
		if err != nil {
			return nil, nil, err
		}
		estimate, err := estimator.NewGeneric(estimator.AlgorithmZstd, s.ZstdLevel)
		if err != nil {
			return nil, nil, err
		}
		return policy, estimate, nil
	},
}

func generic(algorithm estimator.Algorithm, level int) factory {
	return func(log zerolog.Logger, s Settings) (sim.Policy, sim.Estimator, error) {
		estimate, err := estimator.NewGeneric(algorithm, level)
		if err != nil {
			return nil, nil, err
		}
		return dictionary.NewPassthrough(), estimate, nil
	}
}

func trained(log zerolog.Logger, s Settings) (*estimator.Trained, error) {
	return estimator.NewTrained(log,
		estimator.WithMaxModelSize(s.ModelSize),
		estimator.WithWindow(s.Window),
		estimator.WithLevel(s.ZstdLevel),
		estimator.WithAdaptive(s.Adaptive),
		estimator.WithChargeOnClose(s.ChargeOnClose),
		estimator.WithModel(s.Model),
	)
}

// options returns the policy options. Every call creates a new minter, as minters
// must not be shared between policies.
func options(s Settings) []dictionary.Option {
	var minter dictionary.Minter = dictionary.NewSequence()
	if s.HashTokens {
		minter = dictionary.NewHash()
	}
	return []dictionary.Option{
		dictionary.WithMinter(minter),
		dictionary.WithGrowthRatio(s.GrowthRatio),
		dictionary.WithAllActions(s.AllActions),
		dictionary.WithLevel(s.ZstdLevel),
	}
}

func lookup(name string) (factory, error) {
	create, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor (%s)", name)
	}
	return create, nil
}
