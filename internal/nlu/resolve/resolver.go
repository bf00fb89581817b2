// Package resolve attaches catalog IDs to free-text store and food
// references via a search backend.
package resolve

import (
	"context"
	"sync"

	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
)

// Resolver is the catalog lookup contract. ResolveStore returns nil when
// nothing matched. ResolveFood returns one record per input item in input
// order; unmatched items come back with Matched false, never omitted.
type Resolver interface {
	ResolveStore(ctx context.Context, name string) (*models.ResolvedStore, error)
	ResolveFood(ctx context.Context, items []string, storeID string) ([]models.ResolvedFood, error)
}

// resolveFoodConcurrently fans one lookup per item, isolating failures.
// Results land in indexed slots so output order matches input order.
func resolveFoodConcurrently(ctx context.Context, items []string, lookup func(ctx context.Context, item string) *models.ResolvedFood) []models.ResolvedFood {
	results := make([]models.ResolvedFood, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item string) {
			defer wg.Done()
			if r := lookup(ctx, item); r != nil {
				results[i] = *r
			} else {
				results[i] = models.ResolvedFood{Query: item, Matched: false}
			}
			outcome := "unmatched"
			if results[i].Matched {
				outcome = "matched"
			}
			metrics.ResolutionsTotal.WithLabelValues("food", outcome).Inc()
		}(i, item)
	}
	wg.Wait()
	return results
}
