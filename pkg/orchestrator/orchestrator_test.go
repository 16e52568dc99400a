package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonbridge/pkg/types"
	"tonbridge/pkg/wallet"
)

// sessionWallet implements wallet.Wallet for pipeline tests. Approvals
// update the held allowance so the post-approval re-read sees the grant.
type sessionWallet struct {
	activeChain   int64
	tokenBalance  *big.Int
	nativeBalance *big.Int
	allowance     *big.Int

	switchErr  error
	approveErr error
	sendErr    error
	tokenErr   error

	switchCalls  int
	approveCalls int
	sendCalls    int
}

func (m *sessionWallet) Address() common.Address { return common.HexToAddress("0x1111") }

func (m *sessionWallet) ActiveChainID(context.Context) (int64, error) { return m.activeChain, nil }

func (m *sessionWallet) SwitchChain(_ context.Context, chainID int64) error {
	m.switchCalls++
	if m.switchErr != nil {
		return m.switchErr
	}
	m.activeChain = chainID
	return nil
}

func (m *sessionWallet) NativeBalance(context.Context, int64) (*big.Int, error) {
	return m.nativeBalance, nil
}

func (m *sessionWallet) TokenBalance(context.Context, int64, common.Address) (*big.Int, error) {
	if m.tokenErr != nil {
		return nil, m.tokenErr
	}
	return m.tokenBalance, nil
}

func (m *sessionWallet) Allowance(context.Context, int64, common.Address, common.Address) (*big.Int, error) {
	return m.allowance, nil
}

func (m *sessionWallet) Approve(_ context.Context, _ int64, _, _ common.Address, amount *big.Int) (string, error) {
	m.approveCalls++
	if m.approveErr != nil {
		return "", m.approveErr
	}
	m.allowance = new(big.Int).Set(amount)
	return "0xapproval", nil
}

func (m *sessionWallet) SendTransaction(context.Context, *types.TxRequest) (string, error) {
	m.sendCalls++
	if m.sendErr != nil {
		return "", m.sendErr
	}
	return "0xbridge", nil
}

func (m *sessionWallet) WaitForReceipt(_ context.Context, _ int64, txHash string) (*wallet.Receipt, error) {
	return &wallet.Receipt{TxHash: txHash, Success: true}, nil
}

// stubProvider returns a canned route set.
type stubProvider struct {
	mu     sync.Mutex
	routes []*types.Route
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) FetchRoutes(context.Context, *types.TransferRequest) ([]*types.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.routes, nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubProvider) setRoutes(routes []*types.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = routes
}

func testRoute() *types.Route {
	return &types.Route{
		ID:             "lifi-across",
		Name:           "via Li.Fi (across)",
		Provider:       "lifi",
		AmountOut:      big.NewInt(499_000_000),
		IsBest:         true,
		ApprovalTarget: common.HexToAddress("0x2222"),
		Payload: types.PrebuiltPayload{Tx: types.TxRequest{
			ChainID: 8453,
			To:      common.HexToAddress("0x3333"),
			Value:   big.NewInt(0),
			Data:    []byte{0x01},
		}},
	}
}

func testRequest() *types.TransferRequest {
	return &types.TransferRequest{
		Amount:      "500",
		AmountUnits: big.NewInt(500_000_000),
		FromChainID: 8453,
		Recipient:   "UQ" + strings.Repeat("A", 46),
		Sender:      common.HexToAddress("0x1111"),
	}
}

func readyWallet() *sessionWallet {
	return &sessionWallet{
		activeChain:   8453,
		tokenBalance:  big.NewInt(1_000_000_000),
		nativeBalance: big.NewInt(1e18),
		allowance:     big.NewInt(0),
	}
}

func newTestOrchestrator(t *testing.T, w *sessionWallet, opts ...Option) *Orchestrator {
	t.Helper()
	provider := &stubProvider{routes: []*types.Route{testRoute()}}
	opts = append(opts, WithSuccessDelay(time.Millisecond))
	o := New(w, provider, wallet.NewOracle(w, nil), testRequest(), opts...)
	require.NoError(t, o.RefreshRoutes(context.Background()))
	return o
}

func TestRunHappyPathWithApproval(t *testing.T) {
	w := readyWallet()
	var seen []Status
	o := newTestOrchestrator(t, w, WithTransitionHook(func(s TxState) {
		seen = append(seen, s.Status)
	}))

	require.NoError(t, o.Run(context.Background()))

	state := o.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, "0xbridge", state.TxHash)
	assert.Equal(t, "0xapproval", state.ApprovalTxHash)
	assert.Empty(t, state.ErrMessage)
	assert.Equal(t, 1, w.approveCalls)
	assert.Equal(t, 1, w.sendCalls)
	assert.Contains(t, seen, StatusApproving)
	assert.Contains(t, seen, StatusExecuting)
	assert.Contains(t, seen, StatusPending)
}

func TestRunSkipsApprovalWhenAllowanceSufficient(t *testing.T) {
	w := readyWallet()
	w.allowance = big.NewInt(600_000_000)
	o := newTestOrchestrator(t, w)

	require.NoError(t, o.Run(context.Background()))

	state := o.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Empty(t, state.ApprovalTxHash)
	assert.Zero(t, w.approveCalls)
}

func TestRunSwitchesNetworkWhenWrong(t *testing.T) {
	w := readyWallet()
	w.activeChain = 1
	o := newTestOrchestrator(t, w)

	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, 1, w.switchCalls)
	assert.Equal(t, int64(8453), w.activeChain)
	assert.Equal(t, StatusSuccess, o.State().Status)
}

func TestRunDoesNotSwitchWhenAlreadyOnTarget(t *testing.T) {
	w := readyWallet()
	var prompts []string
	o := newTestOrchestrator(t, w, WithConfirm(func(p string) bool {
		prompts = append(prompts, p)
		return true
	}))

	require.NoError(t, o.Run(context.Background()))

	assert.Zero(t, w.switchCalls)
	for _, p := range prompts {
		assert.NotContains(t, p, "Switch")
	}
}

func TestRunDeclinedConfirmReturnsToIdle(t *testing.T) {
	w := readyWallet()
	w.allowance = big.NewInt(600_000_000)
	o := newTestOrchestrator(t, w, WithConfirm(func(p string) bool {
		return !strings.Contains(p, "Bridge")
	}))

	require.NoError(t, o.Run(context.Background()))

	state := o.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, state.TxHash)
	assert.Empty(t, state.ErrMessage)
	assert.Zero(t, w.sendCalls)
}

func TestRunWalletRejectionIsCancellationNotError(t *testing.T) {
	w := readyWallet()
	w.allowance = big.NewInt(600_000_000)
	w.sendErr = errors.New("user rejected the request (code 4001)")
	o := newTestOrchestrator(t, w)

	require.NoError(t, o.Run(context.Background()))

	state := o.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, state.TxHash)
	assert.Empty(t, state.ErrMessage)
}

func TestRunSwitchRejectionIsCancellationNotError(t *testing.T) {
	w := readyWallet()
	w.activeChain = 1
	w.switchErr = errors.New("user rejected the request (code 4001)")
	o := newTestOrchestrator(t, w)

	require.NoError(t, o.Run(context.Background()))

	state := o.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, state.TxHash)
	assert.Empty(t, state.ErrMessage)
	assert.Zero(t, w.sendCalls)
}

func TestRunDeclinedApprovalReturnsToIdle(t *testing.T) {
	w := readyWallet()
	o := newTestOrchestrator(t, w, WithConfirm(func(p string) bool {
		return !strings.Contains(p, "Enable USDC")
	}))

	require.NoError(t, o.Run(context.Background()))

	state := o.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, state.ApprovalTxHash)
	assert.Zero(t, w.approveCalls)
	assert.Zero(t, w.sendCalls)
}

func TestRunSendFailureEntersErrorState(t *testing.T) {
	w := readyWallet()
	w.allowance = big.NewInt(600_000_000)
	w.sendErr = errors.New("execution reverted: bridge paused")
	o := newTestOrchestrator(t, w)

	err := o.Run(context.Background())
	require.Error(t, err)

	state := o.State()
	assert.Equal(t, StatusError, state.Status)
	assert.Equal(t, "Transaction failed. Check your balance and try again.", state.ErrMessage)
	assert.NotContains(t, state.ErrMessage, "bridge paused")
}

func TestRunInsufficientBalanceStaysIdle(t *testing.T) {
	w := readyWallet()
	w.tokenBalance = big.NewInt(1_000_000)
	o := newTestOrchestrator(t, w)

	err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient USDC balance")
	assert.Equal(t, StatusIdle, o.State().Status)
	assert.Zero(t, w.sendCalls)
}

func TestRunInsufficientGasStaysIdle(t *testing.T) {
	w := readyWallet()
	w.nativeBalance = big.NewInt(1)
	o := newTestOrchestrator(t, w)

	err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient gas balance")
	assert.Equal(t, StatusIdle, o.State().Status)
}

func TestRunRejectsZeroSpenderRoute(t *testing.T) {
	w := readyWallet()
	route := testRoute()
	route.ApprovalTarget = common.Address{}
	provider := &stubProvider{routes: []*types.Route{route}}
	o := New(w, provider, wallet.NewOracle(w, nil), testRequest(), WithSuccessDelay(time.Millisecond))
	require.NoError(t, o.RefreshRoutes(context.Background()))

	err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "approval target")
	assert.Equal(t, StatusIdle, o.State().Status)
	assert.Zero(t, w.sendCalls)
}

func TestRunRequiresLoadedRoutes(t *testing.T) {
	w := readyWallet()
	provider := &stubProvider{routes: []*types.Route{testRoute()}}
	o := New(w, provider, wallet.NewOracle(w, nil), testRequest())

	err := o.Run(context.Background())
	require.ErrorIs(t, err, types.ErrNoRoutes)
}

func TestRunIsNotReentrant(t *testing.T) {
	w := readyWallet()
	w.allowance = big.NewInt(600_000_000)
	w.sendErr = errors.New("execution reverted")
	o := newTestOrchestrator(t, w)

	require.Error(t, o.Run(context.Background()))
	assert.Equal(t, StatusError, o.State().Status)

	err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset")

	o.Reset()
	w.sendErr = nil
	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, StatusSuccess, o.State().Status)
}

func TestApprovalSurvivesReset(t *testing.T) {
	w := readyWallet()
	w.sendErr = errors.New("execution reverted")
	o := newTestOrchestrator(t, w)

	require.Error(t, o.Run(context.Background()))
	assert.Equal(t, 1, w.approveCalls)

	o.Reset()
	w.sendErr = nil
	require.NoError(t, o.Run(context.Background()))
	// allowance is on chain; the retry must not prompt for it again
	assert.Equal(t, 1, w.approveCalls)
}

func TestRefreshDiscardedWhileSessionActive(t *testing.T) {
	w := readyWallet()
	w.allowance = big.NewInt(600_000_000)
	w.sendErr = errors.New("execution reverted")
	o := newTestOrchestrator(t, w)

	require.Error(t, o.Run(context.Background()))
	require.Equal(t, StatusError, o.State().Status)

	better := testRoute()
	better.ID = "symbiosis"
	better.AmountOut = big.NewInt(499_500_000)
	o.provider.(*stubProvider).setRoutes([]*types.Route{better})

	require.NoError(t, o.RefreshRoutes(context.Background()))
	assert.Equal(t, "lifi-across", o.Route().ID, "non-idle refresh must keep the quoted route")

	o.Reset()
	require.NoError(t, o.RefreshRoutes(context.Background()))
	assert.Equal(t, "symbiosis", o.Route().ID)
}

func TestPreflightFailedReadIsNotInsufficiency(t *testing.T) {
	w := readyWallet()
	w.tokenErr = errors.New("missing trie node")
	o := newTestOrchestrator(t, w)

	pf := o.Preflight(context.Background())
	assert.False(t, pf.BalancesKnown)
	assert.False(t, pf.Passed())
	assert.Equal(t, "balances are still loading or unavailable", pf.FailingCondition())
	// a failed read must never present as an insufficient balance
	assert.NotContains(t, pf.FailingCondition(), "insufficient")
}

func TestPreflightPassesWhenFunded(t *testing.T) {
	w := readyWallet()
	o := newTestOrchestrator(t, w)

	pf := o.Preflight(context.Background())
	assert.True(t, pf.Passed())
	assert.Empty(t, pf.FailingCondition())
}

func TestSelectRoute(t *testing.T) {
	w := readyWallet()
	second := testRoute()
	second.ID = "symbiosis"
	second.AmountOut = big.NewInt(498_000_000)
	provider := &stubProvider{routes: []*types.Route{testRoute(), second}}
	o := New(w, provider, wallet.NewOracle(w, nil), testRequest())
	require.NoError(t, o.RefreshRoutes(context.Background()))

	assert.Equal(t, "lifi-across", o.Route().ID)
	require.NoError(t, o.SelectRoute("symbiosis"))
	assert.Equal(t, "symbiosis", o.Route().ID)
	assert.Error(t, o.SelectRoute("missing"))
}

func TestQuoteRefreshTicker(t *testing.T) {
	w := readyWallet()
	provider := &stubProvider{routes: []*types.Route{testRoute()}}
	o := New(w, provider, wallet.NewOracle(w, nil), testRequest(),
		WithRefreshInterval(5*time.Millisecond))
	require.NoError(t, o.RefreshRoutes(context.Background()))
	initial := provider.callCount()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.StartQuoteRefresh(ctx)
	time.Sleep(30 * time.Millisecond)
	o.StopQuoteRefresh()
	refreshed := provider.callCount()

	assert.Greater(t, refreshed, initial)

	time.Sleep(15 * time.Millisecond)
	assert.Equal(t, refreshed, provider.callCount(), "stopped loop must not keep fetching")
}
