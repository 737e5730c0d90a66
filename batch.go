package fidelity

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pair is one candidate/target comparison job for CompareAll.
type Pair struct {
	Name      string
	Candidate image.Image
	Target    image.Image
}

// CompareAll scores every pair with at most workers concurrent
// comparisons. SSIM is CPU-bound, so workers above GOMAXPROCS buy
// nothing; pass 0 to use GOMAXPROCS. Results align with pairs by index.
// The first failing pair cancels the rest.
func (c *ImageComparer) CompareAll(ctx context.Context, pairs []Pair, workers int) ([]ImageResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]ImageResult, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := c.Compare(p.Candidate, p.Target)
			if err != nil {
				return fmt.Errorf("fidelity: pair %q: %w", p.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
