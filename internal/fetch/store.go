package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gallery/internal/service"
)

// StoreFunc returns a FetchFunc that loads the matching images and all lists
// from svc concurrently. Either failure fails the attempt.
func StoreFunc(svc service.Service) FetchFunc {
	return func(ctx context.Context, query string) (Result, error) {
		var res Result
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			imgs, err := svc.ListImages(ctx, query)
			res.Images = imgs
			return err
		})
		g.Go(func() error {
			lists, err := svc.ListLists(ctx)
			res.Lists = lists
			return err
		})
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
		return res, nil
	}
}
