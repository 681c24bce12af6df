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

package simulation

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

const maxLineSize = 64 * 1024 * 1024

// Source provides log lines one at a time. It returns io.EOF once exhausted.
type Source interface {
	Next() ([]byte, error)
}

// Lines reads newline-delimited records, skipping blank lines.
type Lines struct {
	scanner *bufio.Scanner
}

// NewLines returns a source reading from the given reader.
func NewLines(reader io.Reader) *Lines {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	l := Lines{
		scanner: scanner,
	}
	return &l
}

func (l *Lines) Next() ([]byte, error) {
	for l.scanner.Scan() {
		line := l.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		return line, nil
	}
	err := l.scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("could not read line: %w", err)
	}
	return nil, io.EOF
}
