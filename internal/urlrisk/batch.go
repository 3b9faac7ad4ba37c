package urlrisk

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AssessAll assesses urls with at most limit goroutines. The i-th verdict
// belongs to urls[i]. The only possible error is ctx's.
func AssessAll(ctx context.Context, urls []string, limit int) ([]Verdict, error) {
	results := make([]Verdict, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))
	for i, u := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Assess(u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
