package parser

import (
	"fmt"
	"regexp"
	"strings"

	"tonbridge/pkg/chains"
	"tonbridge/pkg/ton"
	"tonbridge/pkg/types"
)

// ParseBridgeCommand parses a natural language bridge command
// Examples:
//   - "bridge 500 from base"
//   - "500 USDC from arbitrum"
//   - "0.5 from ethereum to UQ..."
func ParseBridgeCommand(command string) (*types.TransferRequest, error) {
	normalized := strings.TrimSpace(command)
	normalized = strings.TrimPrefix(strings.ToLower(normalized), "bridge ")

	// Pattern: <amount> [usdc] from <chain> [to <recipient>]
	pattern := regexp.MustCompile(`^(\d+\.?\d*)\s+(?:usdc\s+)?from\s+([a-z0-9]+)(?:\s+to\s+(\S+))?$`)

	matches := pattern.FindStringSubmatch(strings.ToLower(normalized))
	if matches == nil {
		return nil, fmt.Errorf("invalid bridge command format. Expected: '<amount> from <chain>' (e.g., 'bridge 500 from base')")
	}

	chain, err := chains.ByKey(matches[2])
	if err != nil {
		return nil, err
	}

	req := &types.TransferRequest{
		Amount:      matches[1],
		FromChainID: chain.ID,
	}

	// The recipient was lowercased during normalization; recover the original
	// casing from the raw command since TON addresses are case-sensitive.
	if matches[3] != "" {
		fields := strings.Fields(command)
		req.Recipient = fields[len(fields)-1]
	}

	return req, nil
}

// ValidateTransferRequest checks that a transfer request is complete and
// well-formed before any quote or wallet call.
func ValidateTransferRequest(req *types.TransferRequest) error {
	if req.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if _, err := chains.ByID(req.FromChainID); err != nil {
		return err
	}
	if req.Recipient == "" {
		return fmt.Errorf("recipient address is required. Use --recipient to specify the TON wallet that receives the USDC")
	}
	if err := ton.ValidateAddress(req.Recipient); err != nil {
		return err
	}
	units, err := types.ParseUnits(req.Amount, chains.USDCDecimals)
	if err != nil {
		return err
	}
	req.AmountUnits = units
	return nil
}
