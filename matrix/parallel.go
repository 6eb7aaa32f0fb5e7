// SPDX-License-Identifier: MIT

package matrix

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor runs fn(i) for i in [0, n) with at most workers goroutines.
//
// Behavior:
//   - workers <= 0 means runtime.GOMAXPROCS(0).
//   - n <= 1 or workers == 1 runs inline on the calling goroutine.
//   - The first error cancels the group context; remaining indices are skipped
//     and that error is returned.
//
// fn must only write state owned by index i.
func ParallelFor(ctx context.Context, n, workers int, fn func(i int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n <= 1 || workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			return fn(i)
		})
	}

	return g.Wait()
}
