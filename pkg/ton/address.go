// Package ton provides destination-side address handling for the TON network.
package ton

import (
	"fmt"
	"regexp"
	"strings"
)

// User-friendly TON address form: a two-letter flag prefix followed by 46
// base64url characters (36 bytes of workchain, account id and checksum).
var addressPattern = regexp.MustCompile(`^(UQ|EQ|kQ|0Q)[A-Za-z0-9_-]{46}$`)

// IsValidAddress reports whether s looks like a user-friendly TON wallet
// address. This is a format check only; checksum verification is left to the
// destination wallet.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(strings.TrimSpace(s))
}

// ValidateAddress returns a descriptive error for an invalid TON address.
func ValidateAddress(s string) error {
	if !IsValidAddress(s) {
		return fmt.Errorf("invalid TON address '%s': expected the user-friendly form (UQ... or EQ... followed by 46 characters)", s)
	}
	return nil
}

// ResolveDNS would resolve a .ton domain name to a wallet address.
// DNS resolution is not wired up; callers must pass a raw address.
func ResolveDNS(domain string) (string, error) {
	return "", fmt.Errorf("TON DNS resolution is not supported; use a raw wallet address instead of '%s'", domain)
}
