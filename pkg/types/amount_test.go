package types

import (
	"math/big"
	"testing"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"500", "500000000", false},
		{"500.25", "500250000", false},
		{"0.000001", "1", false},
		{" 1 ", "1000000", false},
		{"0.0000001", "", true}, // more precision than USDC carries
		{"0", "", true},
		{"", "", true},
		{"-5", "", true},
		{"abc", "", true},
		{"1.2.3", "", true},
	}

	for _, tt := range tests {
		got, err := ParseUnits(tt.in, 6)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseUnits(%q): expected error, got %s", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseUnits(%q): %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseUnits(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500000000", "500"},
		{"500250000", "500.25"},
		{"1", "0.000001"},
		{"0", "0"},
	}

	for _, tt := range tests {
		v, _ := new(big.Int).SetString(tt.in, 10)
		if got := FormatUnits(v, 6); got != tt.want {
			t.Errorf("FormatUnits(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := FormatUnits(nil, 6); got != "0" {
		t.Errorf("FormatUnits(nil) = %q, want 0", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"500", "0.5", "1234.567891"} {
		units, err := ParseUnits(s, 6)
		if err != nil {
			t.Fatalf("ParseUnits(%q): %v", s, err)
		}
		if got := FormatUnits(units, 6); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}
