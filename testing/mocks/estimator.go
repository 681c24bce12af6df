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

package mocks

import (
	"testing"
)

type Estimator struct {
	EstimateFunc   func(payload []byte) (int, error)
	ObserveFunc    func(raw []byte)
	BatchStartFunc func() (int, error)
	BatchEndFunc   func() (int, error)
}

func BaselineEstimator(t *testing.T) *Estimator {
	t.Helper()

	e := Estimator{
		EstimateFunc: func(payload []byte) (int, error) {
			return len(payload), nil
		},
		ObserveFunc: func([]byte) {},
		BatchStartFunc: func() (int, error) {
			return 0, nil
		},
		BatchEndFunc: func() (int, error) {
			return 0, nil
		},
	}

	return &e
}

func (e *Estimator) Estimate(payload []byte) (int, error) {
	return e.EstimateFunc(payload)
}

func (e *Estimator) Observe(raw []byte) {
	e.ObserveFunc(raw)
}

func (e *Estimator) BatchStart() (int, error) {
	return e.BatchStartFunc()
}

func (e *Estimator) BatchEnd() (int, error) {
	return e.BatchEndFunc()
}
