package payroll

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type BatchItem struct {
	Key         string      `json:"key" validate:"required,notblank"`
	BasicSalary float64     `json:"basicSalary" validate:"gte=0"`
	Allowances  []Allowance `json:"allowances" validate:"dive"`
	RateTable   string      `json:"rateTable"`
}

type BatchResult struct {
	Key       string
	Breakdown Breakdown
	Err       error
}

// ComputeBatch computes every item independently on at most workers
// goroutines. Item failures are reported in the matching result; the
// returned error is non-nil only when ctx ends before all items ran.
func ComputeBatch(ctx context.Context, items []BatchItem, rates RateResolver, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]BatchResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		if err := gctx.Err(); err != nil {
			break
		}
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = computeItem(item, rates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func computeItem(item BatchItem, rates RateResolver) BatchResult {
	result := BatchResult{Key: item.Key}
	cfg, err := rates.Lookup(item.RateTable)
	if err != nil {
		result.Err = err
		return result
	}
	result.Breakdown, result.Err = Compute(item.BasicSalary, item.Allowances, cfg)
	return result
}
