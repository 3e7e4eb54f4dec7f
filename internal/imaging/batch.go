package imaging

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CircleJob pairs one input image with the path its circle is written to.
type CircleJob struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// BatchItem is the outcome of one CircleJob. Exactly one of Result and Err
// is set.
type BatchItem struct {
	Job    CircleJob
	Result *CircleResult
	Err    error
}

// MakeCircleBatch runs MakeCircleFile for every job with at most parallel
// jobs in flight. A failing job does not stop the others. Items are returned
// in job order, and the returned error joins every job error.
//
// Jobs that have not started when ctx is cancelled are marked with the
// context error.
func MakeCircleBatch(ctx context.Context, cache *ImageCache, jobs []CircleJob, opts CircleOptions, parallel int) ([]BatchItem, error) {
	if parallel < 1 {
		parallel = 1
	}

	items := make([]BatchItem, len(jobs))
	var group errgroup.Group
	group.SetLimit(parallel)

	for i, job := range jobs {
		items[i].Job = job
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			res, err := MakeCircleFile(cache, job.Input, job.Output, opts)
			if err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	_ = group.Wait()

	var errs []error
	for _, item := range items {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.Job.Input, item.Err))
		}
	}
	return items, errors.Join(errs...)
}
