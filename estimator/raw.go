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

package estimator

// Raw estimates a payload by its length. It keeps no state.
type Raw struct{}

// NewRaw returns the baseline estimator.
func NewRaw() *Raw {
	return &Raw{}
}

func (r *Raw) Estimate(payload []byte) (int, error) {
	return len(payload), nil
}

func (r *Raw) Observe([]byte) {}

func (r *Raw) BatchStart() (int, error) {
	return 0, nil
}

func (r *Raw) BatchEnd() (int, error) {
	return 0, nil
}
