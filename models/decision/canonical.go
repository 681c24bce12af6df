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
	"encoding/json"
	"fmt"
)

// Canonical returns the canonical serialization of an action. Maps are encoded with
// sorted keys at every nesting level and without insignificant whitespace, so two
// structurally identical actions always produce the same string.
func Canonical(action Action) (string, error) {
	data, err := json.Marshal(map[string]interface{}(action))
	if err != nil {
		return "", fmt.Errorf("could not encode action: %w", err)
	}
	return string(data), nil
}

// Item is one element of a rewritten action list: either a reference token or the
// original action.
type Item struct {
	Token  string
	Action Action
}

// Reference returns an item that substitutes an action with the given token.
func Reference(token string) Item {
	return Item{Token: token}
}

// Literal returns an item that keeps the action unmodified.
func Literal(action Action) Item {
	return Item{Action: action}
}

// MarshalJSON encodes references as JSON strings and literals as JSON objects.
// Actions are always objects, so a decoder can tell the two apart.
func (i Item) MarshalJSON() ([]byte, error) {
	if i.Action == nil {
		return json.Marshal(i.Token)
	}
	return json.Marshal(map[string]interface{}(i.Action))
}

type rewrittenContext struct {
	Shared map[string]json.Number `json:"TShared"`
	Multi  []Item                 `json:"_multi"`
}

type rewrittenEvent struct {
	Version string           `json:"Version"`
	Context rewrittenContext `json:"c"`
}

// Encode serializes the event with its action list replaced by the given items.
func Encode(event *Event, items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	r := rewrittenEvent{
		Version: event.Version,
		Context: rewrittenContext{
			Shared: event.Shared,
			Multi:  items,
		},
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("could not encode rewritten event: %w", err)
	}
	return data, nil
}
