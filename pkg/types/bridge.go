package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransferRequest represents a user's bridge command: move USDC from one EVM
// chain to a TON recipient.
type TransferRequest struct {
	Amount      string   // human-readable, e.g. "500" or "499.50"
	AmountUnits *big.Int // smallest-unit equivalent (6 decimals)
	FromChainID int64
	Recipient   string // TON wallet address
	Sender      common.Address
}

// Confidence is the route confidence tier derived from the provider's
// security score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFromScore maps a provider security score (1-10) to a tier.
func ConfidenceFromScore(score int) Confidence {
	switch {
	case score >= 9:
		return ConfidenceHigh
	case score >= 7:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Route is a quoted path for bridging value, normalized across providers.
// A Route is held immutably for the duration of one transfer attempt and
// re-fetched on expiry or retry.
type Route struct {
	ID              string
	Name            string // e.g. "via Li.Fi (across)"
	Provider        string
	AmountOut       *big.Int // estimated recipient amount, smallest unit
	TotalCostUSD    string
	FeeBreakdown    string // e.g. "(0.42% bridge fee)"
	DurationSeconds int
	Confidence      Confidence
	IsBest          bool

	// ApprovalTarget is the spender contract the source USDC must be
	// approved for. It must be a non-zero address before any approval or
	// execution step may proceed.
	ApprovalTarget common.Address

	// Payload is the provider-specific means of obtaining the final
	// transaction request. Resolved exactly once, at the executor boundary.
	Payload ExecutionPayload
}

// HasValidSpender reports whether the route carries a usable approval target.
func (r *Route) HasValidSpender() bool {
	return r != nil && r.ApprovalTarget != (common.Address{})
}

// DurationDisplay renders the estimated duration the way quotes are shown.
func (r *Route) DurationDisplay() string {
	if r.DurationSeconds < 60 {
		return "< 1 minute"
	}
	mins := r.DurationSeconds / 60
	if mins == 1 {
		return "~ 1 minute"
	}
	return fmt.Sprintf("~ %d minutes", mins)
}
