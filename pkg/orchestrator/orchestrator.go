// Package orchestrator drives a bridge transfer through its full lifecycle:
// preflight gate, optional network switch, optional ERC-20 approval, payload
// execution, and confirmation tracking. One orchestrator manages one
// transfer session.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tonbridge/pkg/approval"
	"tonbridge/pkg/chains"
	"tonbridge/pkg/client"
	"tonbridge/pkg/types"
	"tonbridge/pkg/wallet"
)

// Status is the lifecycle stage of the transfer session.
type Status string

const (
	StatusIdle             Status = "idle"
	StatusSwitchingNetwork Status = "switching_network"
	StatusApproving        Status = "approving"
	StatusExecuting        Status = "executing"
	StatusPending          Status = "pending"
	StatusSuccess          Status = "success"
	StatusError            Status = "error"
)

// TxState is an observable snapshot of the session. ErrMessage is only set
// in the error status and is always a sanitized, user-facing string.
type TxState struct {
	Status         Status
	TxHash         string
	ApprovalTxHash string
	ErrMessage     string
}

// ConfirmFunc asks the user to confirm a step. Returning false cancels the
// session back to idle; it is never treated as a failure.
type ConfirmFunc func(prompt string) bool

const (
	defaultRefreshInterval = 30 * time.Second
	defaultSuccessDelay    = 3 * time.Second
)

// Orchestrator runs one transfer through the pipeline. All exported methods
// are safe for concurrent use; Run itself is serialized by a session guard
// so a second Run during an active one fails fast instead of interleaving.
type Orchestrator struct {
	w        wallet.Wallet
	provider client.RouteProvider
	oracle   *wallet.Oracle
	req      *types.TransferRequest
	log      *zap.Logger

	confirm         ConfirmFunc
	refreshInterval time.Duration
	successDelay    time.Duration
	onTransition    func(TxState)

	mu           sync.Mutex
	state        TxState
	routes       []*types.Route
	selectedID   string
	approvalDone bool
	running      bool

	stopRefresh chan struct{}
}

// Option configures an orchestrator.
type Option func(*Orchestrator)

// WithConfirm sets the confirmation prompt callback. Without one, every
// step is auto-confirmed.
func WithConfirm(fn ConfirmFunc) Option {
	return func(o *Orchestrator) { o.confirm = fn }
}

// WithRefreshInterval overrides the quote refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.refreshInterval = d }
}

// WithSuccessDelay overrides the pause between submission and success.
func WithSuccessDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.successDelay = d }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithTransitionHook registers a callback invoked on every state change,
// with the new snapshot. Called outside the orchestrator's lock.
func WithTransitionHook(fn func(TxState)) Option {
	return func(o *Orchestrator) { o.onTransition = fn }
}

// New creates an orchestrator for one transfer request
func New(w wallet.Wallet, provider client.RouteProvider, oracle *wallet.Oracle, req *types.TransferRequest, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		w:               w,
		provider:        provider,
		oracle:          oracle,
		req:             req,
		log:             zap.NewNop(),
		confirm:         func(string) bool { return true },
		refreshInterval: defaultRefreshInterval,
		successDelay:    defaultSuccessDelay,
		state:           TxState{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current session snapshot.
func (o *Orchestrator) State() TxState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Routes returns the current quote set, best first.
func (o *Orchestrator) Routes() []*types.Route {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*types.Route, len(o.routes))
	copy(out, o.routes)
	return out
}

// Route returns the route the session will execute: the explicitly selected
// one if it survived the last refresh, otherwise the best route. Nil when no
// quotes are loaded.
func (o *Orchestrator) Route() *types.Route {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.routeLocked()
}

func (o *Orchestrator) routeLocked() *types.Route {
	if o.selectedID != "" {
		for _, r := range o.routes {
			if r.ID == o.selectedID {
				return r
			}
		}
	}
	if len(o.routes) > 0 {
		return o.routes[0]
	}
	return nil
}

// SelectRoute pins the session to a specific quoted route by id.
func (o *Orchestrator) SelectRoute(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range o.routes {
		if r.ID == id {
			o.selectedID = id
			return nil
		}
	}
	return fmt.Errorf("no quoted route with id %q", id)
}

// RefreshRoutes fetches a fresh quote set. It replaces the stored quotes
// only while the session is idle: once a step is in flight the quoted
// payload must stay stable.
func (o *Orchestrator) RefreshRoutes(ctx context.Context) error {
	routes, err := o.provider.FetchRoutes(ctx, o.req)
	if err != nil {
		return err
	}

	o.mu.Lock()
	if o.state.Status != StatusIdle {
		o.mu.Unlock()
		o.log.Debug("quote refresh discarded, session not idle")
		return nil
	}
	o.routes = routes
	o.mu.Unlock()

	o.log.Debug("quotes refreshed", zap.Int("routes", len(routes)))
	return nil
}

// StartQuoteRefresh begins periodic background quote refreshes. Refreshes
// are suppressed while a session step is active; a failed refresh keeps the
// previous quotes. Stop with StopQuoteRefresh or by cancelling ctx.
func (o *Orchestrator) StartQuoteRefresh(ctx context.Context) {
	o.mu.Lock()
	if o.stopRefresh != nil {
		o.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	o.stopRefresh = stop
	o.mu.Unlock()

	go func() {
		ticker := time.NewTicker(o.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if o.State().Status != StatusIdle {
					continue
				}
				if err := o.RefreshRoutes(ctx); err != nil {
					o.log.Warn("quote refresh failed", zap.Error(err))
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// StopQuoteRefresh stops the background refresh loop if one is running.
func (o *Orchestrator) StopQuoteRefresh() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopRefresh != nil {
		close(o.stopRefresh)
		o.stopRefresh = nil
	}
}

// Reset returns a finished or failed session to idle so the request can be
// quoted and run again. The approval memo survives: an allowance granted on
// chain does not disappear because the session restarted.
func (o *Orchestrator) Reset() {
	o.setState(func(s *TxState) {
		s.Status = StatusIdle
		s.TxHash = ""
		s.ApprovalTxHash = ""
		s.ErrMessage = ""
	})
}

// Run executes the full pipeline for the selected route. It returns nil
// both on success and on user cancellation (the session simply returns to
// idle); only real failures return an error, mirrored in the error state.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("a transfer session is already running")
	}
	if o.state.Status != StatusIdle {
		o.mu.Unlock()
		return fmt.Errorf("session is %s, reset before running again", o.state.Status)
	}
	o.running = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	// Everything up to the first confirmed step is a gate, not a stage:
	// the session stays idle while a gate fails, so the caller can refresh
	// quotes or top up and try again without a reset.
	route := o.Route()
	if route == nil {
		return fmt.Errorf("%w: no quoted routes loaded", types.ErrNoRoutes)
	}

	chain, err := chains.ByID(o.req.FromChainID)
	if err != nil {
		return err
	}

	pf := o.Preflight(ctx)
	if !pf.PassedExceptNetwork() {
		return fmt.Errorf("preflight failed: %s", pf.FailingCondition())
	}

	if !pf.CorrectNetwork {
		if !o.confirm(fmt.Sprintf("Switch wallet network to %s?", chain.Name)) {
			return o.cancel()
		}
		o.transition(StatusSwitchingNetwork)
		if err := o.w.SwitchChain(ctx, chain.ID); err != nil {
			if IsUserRejection(err) {
				return o.cancel()
			}
			return o.fail(err)
		}
		o.log.Info("switched network", zap.String("chain", chain.Name))
	}

	if err := o.ensureApproval(ctx, chain, route); err != nil {
		if IsUserRejection(err) {
			return o.cancel()
		}
		return o.fail(err)
	}

	if !o.confirm(fmt.Sprintf("Bridge %s USDC to %s %s?", o.req.Amount, route.Name, o.req.Recipient)) {
		return o.cancel()
	}

	o.transition(StatusExecuting)
	exec := NewExecutor(o.w, o.log)
	txHash, err := exec.Execute(ctx, route)
	if err != nil {
		if IsUserRejection(err) {
			return o.cancel()
		}
		return o.fail(err)
	}

	o.setState(func(s *TxState) {
		s.Status = StatusPending
		s.TxHash = txHash
	})

	// The source-chain submission is the terminal observable event; the
	// destination leg settles asynchronously on TON. Hold pending briefly
	// so watchers see the stage, then report success.
	// Cancellation here cannot retract the broadcast tx; it only abandons
	// local tracking. The hash stays recorded.
	select {
	case <-time.After(o.successDelay):
	case <-ctx.Done():
		return o.cancel()
	}

	o.transition(StatusSuccess)
	o.log.Info("transfer submitted",
		zap.String("route", route.Name),
		zap.String("tx_hash", txHash),
		zap.String("recipient", o.req.Recipient))
	return nil
}

// ensureApproval runs the approval stage when the route's spender needs one.
// A granted approval is remembered for the session so a later retry after an
// unrelated failure does not prompt again.
func (o *Orchestrator) ensureApproval(ctx context.Context, chain chains.Chain, route *types.Route) error {
	coord := approval.New(o.w, chain.ID, chain.USDCAddress, route.ApprovalTarget, o.req.AmountUnits, o.log)

	needed, _, err := coord.NeedsApproval(ctx)
	if err != nil {
		return err
	}

	o.mu.Lock()
	done := o.approvalDone
	o.mu.Unlock()
	if !needed || done {
		return nil
	}

	if !o.confirm(fmt.Sprintf("Enable USDC spending for %s?", route.Provider)) {
		return types.ErrUserRejected
	}

	o.transition(StatusApproving)
	txHash, err := coord.Approve(ctx)
	if err != nil {
		return err
	}
	o.setState(func(s *TxState) { s.ApprovalTxHash = txHash })

	if _, err := o.w.WaitForReceipt(ctx, chain.ID, txHash); err != nil {
		return fmt.Errorf("approval confirmation failed: %w", err)
	}

	// Re-read rather than trust the receipt: some tokens adjust the
	// effective allowance.
	allowance, err := coord.Allowance(ctx)
	if err != nil {
		return err
	}
	if allowance.Cmp(o.req.AmountUnits) < 0 {
		return fmt.Errorf("allowance %s still below required %s after approval", allowance, o.req.AmountUnits)
	}

	o.mu.Lock()
	o.approvalDone = true
	o.mu.Unlock()
	return nil
}

// cancel returns the session to idle after a user rejection. Nothing was
// broadcast in the rejected step, so no hash is recorded and no error
// surfaces.
func (o *Orchestrator) cancel() error {
	o.log.Info("transfer cancelled by user")
	o.setState(func(s *TxState) {
		s.Status = StatusIdle
		s.ErrMessage = ""
	})
	return nil
}

// fail moves the session to the error state with a sanitized message and
// returns the original error to the caller.
func (o *Orchestrator) fail(err error) error {
	o.log.Error("transfer failed", zap.Error(err))
	o.setState(func(s *TxState) {
		s.Status = StatusError
		s.ErrMessage = UserMessage(err)
	})
	return err
}

func (o *Orchestrator) transition(status Status) {
	o.setState(func(s *TxState) { s.Status = status })
}

func (o *Orchestrator) setState(mutate func(*TxState)) {
	o.mu.Lock()
	mutate(&o.state)
	snapshot := o.state
	o.mu.Unlock()
	if o.onTransition != nil {
		o.onTransition(snapshot)
	}
}
