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

package decision

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidRecord is returned when a log line is not a decision event, or when it
// lacks the action list.
var ErrInvalidRecord = errors.New("invalid decision record")

// Action is a single entry of a decision's action list. Values are decoded with
// json.Number so that numbers keep their literal representation.
type Action map[string]interface{}

// Event is a decision event as it appears in the log. It is never modified after
// parsing; policies produce rewritten payloads instead.
type Event struct {
	Version string
	Shared  map[string]json.Number
	Actions []Action

	// Raw holds the line the event was parsed from.
	Raw []byte
}

type wireContext struct {
	Shared map[string]json.Number `json:"TShared"`
	Multi  json.RawMessage        `json:"_multi"`
}

type wireEvent struct {
	Version string       `json:"Version"`
	Context *wireContext `json:"c"`
}

// Parse decodes a single log line into an event. Lines that are not valid JSON,
// lack the `c` object or lack the `c._multi` list are rejected with ErrInvalidRecord.
func Parse(line []byte) (*Event, error) {

	var wire wireEvent
	err := unmarshal(line, &wire)
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode line: %s", ErrInvalidRecord, err)
	}
	if wire.Context == nil {
		return nil, fmt.Errorf("%w: missing context object", ErrInvalidRecord)
	}

	multi := bytes.TrimSpace(wire.Context.Multi)
	if len(multi) == 0 || bytes.Equal(multi, []byte("null")) {
		return nil, fmt.Errorf("%w: missing action list", ErrInvalidRecord)
	}

	var actions []Action
	err = unmarshal(multi, &actions)
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode action list: %s", ErrInvalidRecord, err)
	}
	for i, action := range actions {
		if action == nil {
			return nil, fmt.Errorf("%w: action %d is not an object", ErrInvalidRecord, i)
		}
	}

	raw := make([]byte, len(line))
	copy(raw, line)

	e := Event{
		Version: wire.Version,
		Shared:  wire.Context.Shared,
		Actions: actions,
		Raw:     raw,
	}

	return &e, nil
}

func unmarshal(data []byte, value interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	err := dec.Decode(value)
	if err != nil {
		return err
	}
	_, err = dec.Token()
	if err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
