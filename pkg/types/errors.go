package types

import "errors"

// Error kinds shared across the bridge pipeline. Providers and the wallet
// wrap these so the orchestrator can classify failures without inspecting
// raw RPC or HTTP detail.
var (
	// ErrUserRejected marks an explicit user rejection of a wallet prompt.
	// It is a cancellation, not a failure.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrInvalidSpender indicates a route with a zero or missing approval target.
	ErrInvalidSpender = errors.New("route has no valid approval target")

	// ErrUnsupportedPair indicates a chain pair rejected locally, before any
	// provider call.
	ErrUnsupportedPair = errors.New("transfer pair not supported")

	// ErrNoRoutes indicates the providers returned no usable routes.
	ErrNoRoutes = errors.New("no routes found")

	// ErrQuoteExpired indicates the provider refused a stale quote.
	ErrQuoteExpired = errors.New("quote expired")

	// ErrProvider indicates a provider-side HTTP or network failure.
	ErrProvider = errors.New("bridge provider error")

	// ErrInsufficientFunds covers both token and gas shortfalls.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrReverted indicates an on-chain execution failure.
	ErrReverted = errors.New("transaction reverted")
)
