package task

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ExecuteEach runs t once per element of args with at most limit runs in
// flight (limit < 1 means unbounded). Values and results keep the order of
// args. The first configuration error cancels the remaining runs and is
// returned.
func ExecuteEach[A, T any](
	ctx context.Context,
	rt *Runtime,
	t Task[A, T],
	args []A,
	limit int,
	opts ...Option,
) ([]T, []Result[T], error) {
	values := make([]T, len(args))
	results := make([]Result[T], len(args))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, a := range args {
		g.Go(func() error {
			v, r, err := t.Execute(gctx, rt, a, opts...)
			if err != nil {
				return err
			}
			values[i] = v
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return values, results, nil
}
