package types

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest is a concrete, submittable transaction request resolved from a
// route's execution payload.
type TxRequest struct {
	ChainID  int64
	To       common.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64 // 0 means estimate at submission time
}

// ExecutionPayload is the provider-specific means of obtaining the final
// transaction request for a route. Providers come in two shapes: some return
// a fully prebuilt request with the quote, others return a reference that
// requires a second call to materialize. Callers never need to know which.
type ExecutionPayload interface {
	TransactionRequest(ctx context.Context) (*TxRequest, error)
}

// PrebuiltPayload wraps a transaction request that arrived with the quote.
type PrebuiltPayload struct {
	Tx TxRequest
}

func (p PrebuiltPayload) TransactionRequest(_ context.Context) (*TxRequest, error) {
	tx := p.Tx
	return &tx, nil
}

// DeferredPayload fetches the transaction request on demand. The fetch runs
// at most once; the result is not cached because a payload is resolved a
// single time per transfer attempt.
type DeferredPayload struct {
	Fetch func(ctx context.Context) (*TxRequest, error)
}

func (p DeferredPayload) TransactionRequest(ctx context.Context) (*TxRequest, error) {
	return p.Fetch(ctx)
}
