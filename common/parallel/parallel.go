// Copyright 2026 crossfold Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"context"
	"fmt"
	"sync"

	"github.com/crossfold/crossfold/common/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const chanSize = 1024

// ErrPanic marks errors produced by a recovered panic inside a job.
var ErrPanic = errors.New("job panicked")

/* Parallel Schedulers */

// Spawn starts one goroutine per job and blocks until every job returns. The i-th
// element of the returned slice is the error of job i (nil on success). A panicking
// job is recovered and reported as an ErrPanic error in its own slot; other jobs are
// never interrupted.
func Spawn(nJobs int, worker func(jobId int) error) []error {
	errs := make([]error, nJobs)
	var wg sync.WaitGroup
	for i := 0; i < nJobs; i++ {
		wg.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Logger().Error("panic recovered", zap.Int("job", i), zap.Any("panic", r))
					errs[i] = errors.Annotate(ErrPanic, fmt.Sprint(r))
				}
			}()
			errs[i] = worker(i)
		})
	}
	wg.Wait()
	return errs
}

// For runs worker over [0, nJobs) with at most nWorkers goroutines. The ctx argument
// allows callers to stop handing out new jobs.
func For(ctx context.Context, nJobs, nWorkers int, worker func(jobId int)) error {
	if nWorkers <= 1 {
		for i := 0; i < nJobs; i++ {
			if err := ctx.Err(); err != nil {
				return errors.Trace(err)
			}
			worker(i)
		}
		return nil
	}
	c := make(chan int, chanSize)
	// producer
	go func() {
		defer close(c)
		for i := 0; i < nJobs; i++ {
			select {
			case <-ctx.Done():
				return
			case c <- i:
			}
		}
	}()
	// consumer
	var wg sync.WaitGroup
	for j := 0; j < nWorkers; j++ {
		wg.Go(func() {
			for jobId := range c {
				if ctx.Err() != nil {
					return
				}
				worker(jobId)
			}
		})
	}
	wg.Wait()
	return errors.Trace(ctx.Err())
}
