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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/optakt/flow-dedup/metrics/rcrowley"
	"github.com/optakt/flow-dedup/models/decision"
	"github.com/optakt/flow-dedup/models/sim"
)

// Processor is a single batching pipeline fed by a client.
type Processor interface {
	Label() string
	Process(event *decision.Event) error
	Drain() error
	Batches() []sim.Batch
}

// Client is an independent pipeline instance. Every line it receives is parsed once
// and handed to each of its processors in order. A client shares no state with
// other clients.
type Client struct {
	log   zerolog.Logger
	id    int
	procs []Processor
	timer *rcrowley.Time
	lines int
	raw   int
}

// ClientOption is an option that can be given to a client on construction.
type ClientOption func(*Client)

// WithTimer times every call to a processor under the processor's label.
func WithTimer(timer *rcrowley.Time) ClientOption {
	return func(c *Client) {
		c.timer = timer
	}
}

// NewClient returns a client without processors.
func NewClient(log zerolog.Logger, id int, options ...ClientOption) *Client {

	c := Client{
		log: log.With().Str("component", "client").Int("client", id).Logger(),
		id:  id,
	}
	for _, option := range options {
		option(&c)
	}

	return &c
}

// ID returns the identifier of the client.
func (c *Client) ID() int {
	return c.id
}

// Add registers a processor.
func (c *Client) Add(proc Processor) {
	c.procs = append(c.procs, proc)
}

// Processors returns the registered processors.
func (c *Client) Processors() []Processor {
	return c.procs
}

// Lines returns the number of lines and raw bytes seen so far.
func (c *Client) Lines() (int, int) {
	return c.lines, c.raw
}

// Line parses a log line and feeds it to every processor. An invalid line is an
// error, as no processor can recover from a record it cannot see.
func (c *Client) Line(line []byte) error {

	event, err := decision.Parse(line)
	if err != nil {
		return fmt.Errorf("could not parse line %d: %w", c.lines+1, err)
	}

	c.lines++
	c.raw += len(line)

	for _, proc := range c.procs {
		if c.timer != nil {
			stop := c.timer.Duration(proc.Label())
			err = proc.Process(event)
			stop()
		} else {
			err = proc.Process(event)
		}
		if err != nil {
			return fmt.Errorf("could not process line %d with %s: %w", c.lines, proc.Label(), err)
		}
	}

	return nil
}

// Run feeds every line of the source to the processors and drains them once the
// source is exhausted or the context is canceled.
func (c *Client) Run(ctx context.Context, source Source) error {

Loop:
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Int("lines", c.lines).Msg("client stopped early")
			break Loop
		default:
			// continue
		}

		line, err := source.Next()
		if errors.Is(err, io.EOF) {
			break Loop
		}
		if err != nil {
			return fmt.Errorf("could not read next line: %w", err)
		}

		err = c.Line(line)
		if err != nil {
			return err
		}
	}

	err := c.Finish()
	if err != nil {
		return fmt.Errorf("could not finish client: %w", err)
	}

	return nil
}

// Finish drains every processor.
func (c *Client) Finish() error {

	var merr *multierror.Error
	for _, proc := range c.procs {
		err := proc.Drain()
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("could not drain %s: %w", proc.Label(), err))
		}
	}

	c.log.Info().
		Int("lines", c.lines).
		Int("raw_size", c.raw).
		Int("processors", len(c.procs)).
		Msg("client finished")

	return merr.ErrorOrNil()
}
