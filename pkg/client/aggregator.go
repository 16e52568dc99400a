package client

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"go.uber.org/zap"

	"tonbridge/pkg/chains"
	"tonbridge/pkg/types"
)

// Aggregator fans a quote request out to every configured provider and merges
// the results into one deterministic, best-route-first list. A single provider
// failing is tolerated as long as another returns routes.
type Aggregator struct {
	providers []RouteProvider
	log       *zap.Logger
}

// NewAggregator creates an aggregator over the given providers
func NewAggregator(log *zap.Logger, providers ...RouteProvider) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{providers: providers, log: log}
}

// Name returns the provider's display name
func (a *Aggregator) Name() string { return "aggregator" }

// FetchRoutes validates the pair locally, queries all providers concurrently,
// and returns routes sorted by estimated output (highest first). The first
// route is marked best.
func (a *Aggregator) FetchRoutes(ctx context.Context, req *types.TransferRequest) ([]*types.Route, error) {
	if !chains.IsSupportedPair(req.FromChainID, chains.TONChainKey) {
		return nil, fmt.Errorf("%w: chain id %d -> %s", types.ErrUnsupportedPair, req.FromChainID, chains.TONChainKey)
	}

	var (
		mu     sync.Mutex
		routes []*types.Route
		errs   []error
		wg     sync.WaitGroup
	)

	for _, p := range a.providers {
		wg.Add(1)
		go func(p RouteProvider) {
			defer wg.Done()
			got, err := p.FetchRoutes(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.log.Warn("provider quote failed", zap.String("provider", p.Name()), zap.Error(err))
				errs = append(errs, err)
				return
			}
			routes = append(routes, got...)
		}(p)
	}
	wg.Wait()

	if len(routes) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("%w: all providers failed: %v", types.ErrProvider, errs[0])
		}
		return nil, types.ErrNoRoutes
	}

	sortRoutes(routes)
	for i := range routes {
		routes[i].IsBest = i == 0
	}

	a.log.Info("routes aggregated",
		zap.Int("count", len(routes)),
		zap.String("best", routes[0].Name))

	return routes, nil
}

// sortRoutes orders best route first: highest estimated output, then provider
// name for a deterministic tiebreak.
func sortRoutes(routes []*types.Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		cmp := routes[i].AmountOut.Cmp(routes[j].AmountOut)
		if cmp != 0 {
			return cmp > 0
		}
		return routes[i].Provider < routes[j].Provider
	})
}

// Savings returns how much more the best route delivers than the runner-up,
// in smallest units. Returns nil with fewer than two routes or no advantage.
func Savings(routes []*types.Route) *big.Int {
	if len(routes) < 2 {
		return nil
	}
	diff := new(big.Int).Sub(routes[0].AmountOut, routes[1].AmountOut)
	if diff.Sign() <= 0 {
		return nil
	}
	return diff
}
