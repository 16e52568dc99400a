package ton

import (
	"strings"
	"testing"
)

func TestIsValidAddress(t *testing.T) {
	valid := "UQ" + strings.Repeat("A", 46)

	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"bounceable UQ", valid, true},
		{"bounceable EQ", "EQ" + strings.Repeat("b", 23) + strings.Repeat("_", 23), true},
		{"surrounding whitespace", "  " + valid + "  ", true},
		{"too short", "UQ" + strings.Repeat("A", 45), false},
		{"too long", "UQ" + strings.Repeat("A", 47), false},
		{"bad prefix", "XX" + strings.Repeat("A", 46), false},
		{"evm address", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", false},
		{"illegal character", "UQ" + strings.Repeat("A", 45) + "+", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAddress(tt.addr); got != tt.want {
				t.Errorf("IsValidAddress(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress("UQ" + strings.Repeat("A", 46)); err != nil {
		t.Errorf("valid address rejected: %v", err)
	}
	if err := ValidateAddress("not-an-address"); err == nil {
		t.Error("invalid address accepted")
	}
}

func TestResolveDNSIsStubbed(t *testing.T) {
	if _, err := ResolveDNS("wallet.ton"); err == nil {
		t.Error("ResolveDNS should report not supported")
	}
}
