// Package workpool runs independent per-file work on a bounded set of
// goroutines while keeping results in input order.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item using at most workers goroutines and returns
// the results indexed like items. Workers <= 0 means runtime.NumCPU().
//
// fn reports per-item failures through its result; the returned error is only
// non-nil when ctx is cancelled.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) R) ([]R, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = fn(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
