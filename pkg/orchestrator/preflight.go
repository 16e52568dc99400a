package orchestrator

import (
	"context"
	"math/big"
)

// minGasBalanceWei is the native balance below which the gas check fails
// (0.0005 ETH). A coarse floor: the exact cost depends on the route.
var minGasBalanceWei = big.NewInt(500_000_000_000_000)

// PreflightResult is the derived gate computed before any transaction step.
// It is recomputed from live inputs on demand and never stored.
type PreflightResult struct {
	CorrectNetwork     bool
	BalancesKnown      bool // false while a balance read is failing
	SufficientBalance  bool
	SufficientGas      bool
	ValidRoute         bool
	TokenBalance       *big.Int
	NativeBalance      *big.Int
}

// Passed reports whether every condition holds.
func (p PreflightResult) Passed() bool {
	return p.CorrectNetwork && p.BalancesKnown && p.SufficientBalance && p.SufficientGas && p.ValidRoute
}

// PassedExceptNetwork ignores the network condition, which the orchestrator
// resolves with a proactive switch rather than a hard failure.
func (p PreflightResult) PassedExceptNetwork() bool {
	return p.BalancesKnown && p.SufficientBalance && p.SufficientGas && p.ValidRoute
}

// FailingCondition names the first failing check, for display.
func (p PreflightResult) FailingCondition() string {
	switch {
	case !p.ValidRoute:
		return "no valid route with a usable approval target"
	case !p.BalancesKnown:
		return "balances are still loading or unavailable"
	case !p.SufficientBalance:
		return "insufficient USDC balance"
	case !p.SufficientGas:
		return "insufficient gas balance"
	case !p.CorrectNetwork:
		return "wallet is connected to the wrong network"
	default:
		return ""
	}
}

// Preflight recomputes the gate from current wallet, balance and route state.
func (o *Orchestrator) Preflight(ctx context.Context) PreflightResult {
	var pf PreflightResult

	active, err := o.w.ActiveChainID(ctx)
	pf.CorrectNetwork = err == nil && active == o.req.FromChainID

	usdc, usdcErr := o.oracle.USDC(ctx, o.req.FromChainID)
	native, nativeErr := o.oracle.Native(ctx, o.req.FromChainID)
	pf.BalancesKnown = usdcErr == nil && nativeErr == nil
	pf.TokenBalance = usdc.Amount
	pf.NativeBalance = native.Amount

	// a failed read yields zero; never interpret that as insufficiency
	if pf.BalancesKnown {
		pf.SufficientBalance = usdc.Amount.Cmp(o.req.AmountUnits) >= 0
		pf.SufficientGas = native.Amount.Cmp(minGasBalanceWei) >= 0
	}

	route := o.Route()
	pf.ValidRoute = route.HasValidSpender()

	return pf
}
