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
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job pairs a client with the source of its lines.
type Job struct {
	Client *Client
	Source Source
}

// Run runs every job in its own goroutine. Clients share no state, so no ordering
// is guaranteed between them. The first failure cancels the remaining jobs, which
// drain their open batches before returning.
func Run(ctx context.Context, jobs []Job) error {

	group, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		group.Go(func() error {
			err := job.Client.Run(ctx, job.Source)
			if err != nil {
				return fmt.Errorf("client %d failed: %w", job.Client.ID(), err)
			}
			return nil
		})
	}

	return group.Wait()
}
