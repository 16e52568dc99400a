package client

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonbridge/pkg/types"
)

type stubProvider struct {
	name   string
	routes []*types.Route
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) FetchRoutes(_ context.Context, _ *types.TransferRequest) ([]*types.Route, error) {
	s.calls++
	return s.routes, s.err
}

func stubRoute(provider string, amountOut int64) *types.Route {
	return &types.Route{
		ID:        provider + "-route",
		Name:      "via " + provider,
		Provider:  provider,
		AmountOut: big.NewInt(amountOut),
	}
}

func TestAggregatorSortsBestFirst(t *testing.T) {
	a := NewAggregator(nil,
		&stubProvider{name: "Symbiosis", routes: []*types.Route{stubRoute("Symbiosis", 497_500_000)}},
		&stubProvider{name: "Li.Fi", routes: []*types.Route{stubRoute("Li.Fi", 497_900_000)}},
	)

	routes, err := a.FetchRoutes(context.Background(), testTransferRequest())
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, "Li.Fi", routes[0].Provider)
	assert.True(t, routes[0].IsBest)
	assert.False(t, routes[1].IsBest)

	saved := Savings(routes)
	require.NotNil(t, saved)
	assert.Equal(t, int64(400_000), saved.Int64())
}

func TestAggregatorDeterministicTiebreak(t *testing.T) {
	a := NewAggregator(nil,
		&stubProvider{name: "Symbiosis", routes: []*types.Route{stubRoute("Symbiosis", 100)}},
		&stubProvider{name: "Li.Fi", routes: []*types.Route{stubRoute("Li.Fi", 100)}},
	)

	routes, err := a.FetchRoutes(context.Background(), testTransferRequest())
	require.NoError(t, err)
	assert.Equal(t, "Li.Fi", routes[0].Provider)
	assert.Nil(t, Savings(routes))
}

func TestAggregatorToleratesOneProviderFailing(t *testing.T) {
	a := NewAggregator(nil,
		&stubProvider{name: "Li.Fi", err: errors.New("boom")},
		&stubProvider{name: "Symbiosis", routes: []*types.Route{stubRoute("Symbiosis", 100)}},
	)

	routes, err := a.FetchRoutes(context.Background(), testTransferRequest())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.True(t, routes[0].IsBest)
}

func TestAggregatorAllProvidersFailing(t *testing.T) {
	a := NewAggregator(nil,
		&stubProvider{name: "Li.Fi", err: errors.New("boom")},
		&stubProvider{name: "Symbiosis", err: errors.New("boom")},
	)

	_, err := a.FetchRoutes(context.Background(), testTransferRequest())
	assert.ErrorIs(t, err, types.ErrProvider)
}

func TestAggregatorNoRoutes(t *testing.T) {
	a := NewAggregator(nil, &stubProvider{name: "Li.Fi"})

	_, err := a.FetchRoutes(context.Background(), testTransferRequest())
	assert.ErrorIs(t, err, types.ErrNoRoutes)
}

func TestAggregatorUnsupportedPairSkipsProviders(t *testing.T) {
	p := &stubProvider{name: "Li.Fi", routes: []*types.Route{stubRoute("Li.Fi", 100)}}
	a := NewAggregator(nil, p)

	req := testTransferRequest()
	req.FromChainID = 137
	_, err := a.FetchRoutes(context.Background(), req)
	assert.ErrorIs(t, err, types.ErrUnsupportedPair)
	assert.Zero(t, p.calls)
}
