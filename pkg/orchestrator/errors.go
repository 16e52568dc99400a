package orchestrator

import (
	"context"
	"errors"
	"strings"

	"tonbridge/pkg/types"
)

// ErrorKind buckets every failure the pipeline can produce. User-facing
// messages come from the kind, never from the raw error.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindCancelled         ErrorKind = "cancelled"
	KindProvider          ErrorKind = "provider"
	KindNoRoutes          ErrorKind = "no_routes"
	KindQuoteExpired      ErrorKind = "quote_expired"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindReverted          ErrorKind = "reverted"
)

// Well-known wallet rejection markers. EIP-1193 wallets reject with code
// 4001; the string forms cover the common provider libraries.
var rejectionMarkers = []string{
	"user rejected",
	"user denied",
	"action_rejected",
	"rejected by user",
	"code 4001",
	"code: 4001",
}

// IsUserRejection reports whether an error represents an explicit user
// rejection of a wallet prompt. Rejections are cancellations, not failures.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, types.ErrUserRejected) || errors.Is(err, context.Canceled) {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, marker := range rejectionMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Classify maps an arbitrary pipeline error to its kind.
func Classify(err error) ErrorKind {
	switch {
	case IsUserRejection(err):
		return KindCancelled
	case errors.Is(err, types.ErrInvalidSpender),
		errors.Is(err, types.ErrUnsupportedPair):
		return KindValidation
	case errors.Is(err, types.ErrNoRoutes):
		return KindNoRoutes
	case errors.Is(err, types.ErrQuoteExpired):
		return KindQuoteExpired
	case errors.Is(err, types.ErrInsufficientFunds) || isInsufficientFunds(err):
		return KindInsufficientFunds
	case errors.Is(err, types.ErrReverted) || isReverted(err):
		return KindReverted
	default:
		return KindProvider
	}
}

// UserMessage returns the sanitized message for an error. Raw RPC and
// provider detail never reaches the user; it belongs in logs.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindCancelled:
		return ""
	case KindValidation:
		// validation messages are constructed locally and already actionable
		return err.Error()
	case KindNoRoutes:
		return "No routes found for this transfer. Try a different amount or source chain."
	case KindQuoteExpired:
		return "The quote expired. Fetch a fresh quote and try again."
	case KindInsufficientFunds:
		return "Insufficient funds. Check your USDC balance and gas balance, then try again."
	case KindReverted:
		return "Transaction failed. Check your balance and try again."
	default:
		return "The network is busy. Try again in a moment."
	}
}

func isInsufficientFunds(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "insufficient funds") ||
		strings.Contains(s, "insufficient balance") ||
		strings.Contains(s, "transfer amount exceeds balance")
}

func isReverted(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "execution reverted") || strings.Contains(s, "reverted")
}
