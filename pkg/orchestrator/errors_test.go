package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"tonbridge/pkg/types"
)

func TestIsUserRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", types.ErrUserRejected, true},
		{"wrapped sentinel", fmt.Errorf("step failed: %w", types.ErrUserRejected), true},
		{"context cancel", context.Canceled, true},
		{"metamask style", errors.New("MetaMask Tx Signature: User denied transaction signature"), true},
		{"eip1193 code", errors.New("request failed (code 4001)"), true},
		{"viem style", errors.New("UserRejectedRequestError: ACTION_REJECTED"), true},
		{"rpc failure", errors.New("connection refused"), false},
		{"revert", errors.New("execution reverted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserRejection(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{types.ErrUserRejected, KindCancelled},
		{types.ErrInvalidSpender, KindValidation},
		{types.ErrUnsupportedPair, KindValidation},
		{fmt.Errorf("quote: %w", types.ErrNoRoutes), KindNoRoutes},
		{types.ErrQuoteExpired, KindQuoteExpired},
		{errors.New("insufficient funds for gas * price + value"), KindInsufficientFunds},
		{errors.New("ERC20: transfer amount exceeds balance"), KindInsufficientFunds},
		{fmt.Errorf("wait: %w", types.ErrReverted), KindReverted},
		{errors.New("execution reverted: paused"), KindReverted},
		{errors.New("502 bad gateway"), KindProvider},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "error %v", tt.err)
	}
}

func TestUserMessageNeverLeaksRawDetail(t *testing.T) {
	raw := errors.New(`rpc error: {"jsonrpc":"2.0","error":{"code":-32000,"message":"nonce too low"}}`)
	msg := UserMessage(raw)
	assert.NotContains(t, msg, "jsonrpc")
	assert.NotContains(t, msg, "-32000")
	assert.NotEmpty(t, msg)
}

func TestUserMessageCancelledIsSilent(t *testing.T) {
	assert.Empty(t, UserMessage(types.ErrUserRejected))
}
