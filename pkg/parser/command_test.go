package parser

import (
	"strings"
	"testing"

	"tonbridge/pkg/types"
)

func TestParseBridgeCommand(t *testing.T) {
	tonAddr := "UQ" + strings.Repeat("Ab", 23)

	tests := []struct {
		name      string
		command   string
		wantAmt   string
		wantChain int64
		wantRcpt  string
		wantErr   bool
	}{
		{"plain", "500 from base", "500", 8453, "", false},
		{"with prefix", "bridge 500 from base", "500", 8453, "", false},
		{"with token", "500 USDC from arbitrum", "500", 42161, "", false},
		{"decimal amount", "0.5 from ethereum", "0.5", 1, "", false},
		{"with recipient", "500 from optimism to " + tonAddr, "500", 10, tonAddr, false},
		{"unsupported chain", "500 from polygon", "", 0, "", true},
		{"missing chain", "500 from", "", 0, "", true},
		{"garbage", "send it all", "", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseBridgeCommand(tt.command)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.command)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBridgeCommand(%q): %v", tt.command, err)
			}
			if req.Amount != tt.wantAmt {
				t.Errorf("amount = %q, want %q", req.Amount, tt.wantAmt)
			}
			if req.FromChainID != tt.wantChain {
				t.Errorf("chain = %d, want %d", req.FromChainID, tt.wantChain)
			}
			if req.Recipient != tt.wantRcpt {
				t.Errorf("recipient = %q, want %q", req.Recipient, tt.wantRcpt)
			}
		})
	}
}

func TestValidateTransferRequest(t *testing.T) {
	tonAddr := "UQ" + strings.Repeat("A", 46)

	valid := &types.TransferRequest{Amount: "500", FromChainID: 8453, Recipient: tonAddr}
	if err := ValidateTransferRequest(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if valid.AmountUnits == nil || valid.AmountUnits.String() != "500000000" {
		t.Errorf("AmountUnits = %v, want 500000000", valid.AmountUnits)
	}

	cases := []*types.TransferRequest{
		{Amount: "", FromChainID: 8453, Recipient: tonAddr},
		{Amount: "500", FromChainID: 137, Recipient: tonAddr},
		{Amount: "500", FromChainID: 8453, Recipient: ""},
		{Amount: "500", FromChainID: 8453, Recipient: "0xdeadbeef"},
		{Amount: "0", FromChainID: 8453, Recipient: tonAddr},
	}
	for i, req := range cases {
		if err := ValidateTransferRequest(req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
