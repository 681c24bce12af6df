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
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/models/decision"
)

// Global variables that can be used for testing. They are non-nil valid values for the types commonly needed
// to test simulation components.
var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericBytes = []byte(`test`)

	GenericLine = []byte(`{"Version":"1","c":{"TShared":{"c_0":0.5,"c_1":0.25},"_multi":[{"f_0":0.1,"f_1":0.2},{"f_0":0.3,"f_1":0.4}]}}`)
)

// GenericAction returns a distinct action for every index.
func GenericAction(index int) string {
	return fmt.Sprintf(`{"f_0":%d,"f_1":"action-%d"}`, index, index)
}

// GenericEventLine returns a log line whose action list holds the given actions.
func GenericEventLine(actions ...string) []byte {
	return []byte(`{"Version":"1","c":{"TShared":{"c_0":1},"_multi":[` + strings.Join(actions, ",") + `]}}`)
}

// GenericEvent parses a log line built from the given actions, and panics if it is invalid.
func GenericEvent(actions ...string) *decision.Event {
	event, err := decision.Parse(GenericEventLine(actions...))
	if err != nil {
		panic(err)
	}
	return event
}

// GenericCorpus returns count log lines shaped like production traffic: 30 shared
// features with random values, and up to 15 actions drawn from a pool of the given
// size. The same seed always gives the same lines, and pool actions are the same
// for every seed.
func GenericCorpus(seed int64, count int, pool int) [][]byte {
	actions := 15
	if pool < actions {
		actions = pool
	}
	random := rand.New(rand.NewSource(seed))
	lines := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		var b strings.Builder
		b.WriteString(`{"Version":"1","c":{"TShared":{`)
		for f := 0; f < 30; f++ {
			if f > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, `"c_%d":%.2f`, f, random.Float64())
		}
		b.WriteString(`},"_multi":[`)
		for j, index := range random.Perm(pool)[:actions] {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(poolAction(index))
		}
		b.WriteString(`]}}`)
		lines = append(lines, []byte(b.String()))
	}
	return lines
}

func poolAction(index int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"a_id":"action-%03d"`, index)
	for f := 0; f < 8; f++ {
		fmt.Fprintf(&b, `,"f_%d":%.3f`, f, float64((index*31+f*17)%997)/997)
	}
	b.WriteByte('}')
	return b.String()
}
