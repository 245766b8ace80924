package blob

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// ParallelConfig holds configuration for multi-image extraction.
type ParallelConfig struct {
	MaxWorkers int                        // Number of parallel workers (0 = runtime.NumCPU())
	Progress   func(done, total int)      // Optional progress reporting
	OnError    func(index int, err error) // Optional per-image error handler
}

type imageJob struct {
	index int
	image trace.Image
}

type imageResult struct {
	index  int
	result *Result
	err    error
}

// FindAll runs Find on every image using a worker pool. Results are returned
// in input order; a failed image leaves a nil entry and the first failure is
// returned as error.
func FindAll(ctx context.Context, images []trace.Image, cfg Config, pc ParallelConfig) ([]*Result, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	if pc.MaxWorkers <= 0 {
		pc.MaxWorkers = runtime.NumCPU()
	}
	if pc.MaxWorkers > len(images) {
		pc.MaxWorkers = len(images)
	}

	jobs := make(chan imageJob, len(images))
	results := make(chan imageResult, len(images))

	var wg sync.WaitGroup
	for range pc.MaxWorkers {
		wg.Add(1)
		go worker(ctx, jobs, results, &wg, cfg)
	}

	go func() {
		defer close(jobs)
		for i, img := range images {
			select {
			case jobs <- imageJob{index: i, image: img}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*Result, len(images))
	errs := make([]error, len(images))
	done := 0
	for r := range results {
		ordered[r.index] = r.result
		errs[r.index] = r.err
		done++
		if pc.Progress != nil {
			pc.Progress(done, len(images))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstErr error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("image %d: %w", i, err)
		}
		if pc.OnError != nil {
			pc.OnError(i, err)
		}
	}
	return ordered, firstErr
}

func worker(ctx context.Context, jobs <-chan imageJob, results chan<- imageResult, wg *sync.WaitGroup, cfg Config) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res, err := Find(job.image, cfg)
			select {
			case results <- imageResult{index: job.index, result: res, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
