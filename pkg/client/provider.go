// Package client integrates the bridge aggregation providers. Each provider
// speaks its own HTTP API and payload shape; everything is normalized to the
// shared Route type before it leaves this package.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"tonbridge/pkg/chains"
	"tonbridge/pkg/types"
)

// RouteProvider is one bridge aggregation backend.
type RouteProvider interface {
	Name() string
	FetchRoutes(ctx context.Context, req *types.TransferRequest) ([]*types.Route, error)
}

// ping reports whether a provider endpoint is reachable. Any HTTP response,
// whatever its status, proves reachability; only transport errors fail.
func ping(ctx context.Context, httpc *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// providerStatusError converts a non-200 provider response into an error,
// surfacing the provider's own message when the body carries one.
func providerStatusError(provider string, statusCode int, body []byte) error {
	if statusCode == http.StatusGone {
		return fmt.Errorf("%w: %s returned status %d", types.ErrQuoteExpired, provider, statusCode)
	}

	if len(body) > 0 {
		var errorResp map[string]interface{}
		if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil {
			if message, ok := errorResp["message"].(string); ok {
				if strings.Contains(strings.ToLower(message), "expired") {
					return fmt.Errorf("%w: %s: %s", types.ErrQuoteExpired, provider, message)
				}
				return fmt.Errorf("%w: %s (status %d): %s", types.ErrProvider, provider, statusCode, message)
			}
		}
	}
	return fmt.Errorf("%w: %s returned status %d", types.ErrProvider, provider, statusCode)
}

// parseTxRequest decodes the wire form of a transaction request. Value and
// gas limit arrive as hex or decimal strings depending on the provider.
func parseTxRequest(to, data, value, gasLimit string, chainID int64) (*types.TxRequest, error) {
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("invalid destination address %q", to)
	}

	val := big.NewInt(0)
	if value != "" {
		parsed, ok := parseQuantity(value)
		if !ok {
			return nil, fmt.Errorf("invalid value %q", value)
		}
		val = parsed
	}

	var gas uint64
	if gasLimit != "" {
		parsed, ok := parseQuantity(gasLimit)
		if !ok || !parsed.IsUint64() {
			return nil, fmt.Errorf("invalid gas limit %q", gasLimit)
		}
		gas = parsed.Uint64()
	}

	var calldata []byte
	if data != "" {
		calldata = common.FromHex(data)
	}

	return &types.TxRequest{
		ChainID:  chainID,
		To:       common.HexToAddress(to),
		Value:    val,
		Data:     calldata,
		GasLimit: gas,
	}, nil
}

func parseQuantity(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}

// feeBreakdown renders the fee as a percentage of the input amount, the way
// quotes are displayed to the user.
func feeBreakdown(amountIn, amountOut *big.Int) string {
	if amountIn == nil || amountIn.Sign() == 0 {
		return ""
	}
	fee := new(big.Int).Sub(amountIn, amountOut)
	if fee.Sign() < 0 {
		fee = big.NewInt(0)
	}
	// percent with two decimals, computed in integer math
	scaled := new(big.Int).Mul(fee, big.NewInt(10000))
	scaled.Quo(scaled, amountIn)
	return fmt.Sprintf("(%d.%02d%% bridge fee)", scaled.Int64()/100, scaled.Int64()%100)
}

// usdcAddressFor returns the source-chain USDC contract for a request.
func usdcAddressFor(chainID int64) (common.Address, error) {
	chain, err := chains.ByID(chainID)
	if err != nil {
		return common.Address{}, err
	}
	return chain.USDCAddress, nil
}
