package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// forEachOrdered runs work for the indices [0, n) on up to workers
// goroutines and hands every result to emit in index order. The first
// error from work or emit stops scheduling and is returned; results still
// in flight are discarded.
func forEachOrdered[T any](
	parent context.Context,
	n, workers int,
	work func(ctx context.Context, i int) (T, error),
	emit func(i int, v T) error,
) error {
	if n == 0 {
		return parent.Err()
	}
	workers = max(1, min(workers, n))

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	type result struct {
		idx int
		val T
		err error
	}
	jobs := make(chan int)
	results := make(chan result, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				v, err := work(ctx, i)
				select {
				case results <- result{idx: i, val: v, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	fail := func(err error) error {
		cancel()
		for range results {
		}
		return err
	}

	pending := make(map[int]T)
	next := 0
	for res := range results {
		if res.err != nil {
			return fail(fmt.Errorf("item %d: %w", res.idx, res.err))
		}
		pending[res.idx] = res.val
		for {
			v, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := emit(next, v); err != nil {
				return fail(err)
			}
			next++
		}
	}

	if next < n {
		if err := parent.Err(); err != nil {
			return err
		}
		return context.Canceled
	}
	return nil
}
