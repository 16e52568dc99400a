package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tonbridge/pkg/chains"
	"tonbridge/pkg/types"
)

const (
	lifiSecurityScore  = 8 // audited third-party bridges (Across, Stargate)
	defaultHTTPTimeout = 15 * time.Second
)

// LiFiClient fetches bridge quotes from the Li.Fi aggregation API. Li.Fi
// returns a fully prebuilt transaction request with every quote.
type LiFiClient struct {
	baseURL     string
	slippageBps int
	httpc       *http.Client
	log         *zap.Logger
}

// NewLiFiClient creates a new Li.Fi API client
func NewLiFiClient(baseURL string, slippageBps int, log *zap.Logger) *LiFiClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &LiFiClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		slippageBps: slippageBps,
		httpc:       &http.Client{Timeout: defaultHTTPTimeout},
		log:         log,
	}
}

// Name returns the provider's display name
func (c *LiFiClient) Name() string { return "Li.Fi" }

// Ping checks that the Li.Fi API is reachable
func (c *LiFiClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpc, c.baseURL+"/chains")
}

type lifiQuoteResponse struct {
	ID       string `json:"id"`
	Tool     string `json:"tool"`
	Estimate struct {
		ToAmount          string `json:"toAmount"`
		ExecutionDuration int    `json:"executionDuration"`
		ApprovalAddress   string `json:"approvalAddress"`
		FeeCosts          []struct {
			AmountUSD string `json:"amountUSD"`
		} `json:"feeCosts"`
	} `json:"estimate"`
	IncludedSteps []struct {
		Tool string `json:"tool"`
	} `json:"includedSteps"`
	TransactionRequest struct {
		To       string `json:"to"`
		Data     string `json:"data"`
		Value    string `json:"value"`
		GasLimit string `json:"gasLimit"`
		ChainID  int64  `json:"chainId"`
	} `json:"transactionRequest"`
}

// FetchRoutes requests a quote for the transfer and normalizes it to a Route
func (c *LiFiClient) FetchRoutes(ctx context.Context, req *types.TransferRequest) ([]*types.Route, error) {
	chain, err := chains.ByID(req.FromChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnsupportedPair, err)
	}

	params := url.Values{}
	params.Set("fromChain", strconv.FormatInt(chain.ID, 10))
	params.Set("toChain", chains.TONChainKey)
	params.Set("fromToken", chain.USDCAddress.Hex())
	params.Set("toToken", "USDC")
	params.Set("fromAmount", req.AmountUnits.String())
	params.Set("fromAddress", req.Sender.Hex())
	params.Set("toAddress", req.Recipient)
	params.Set("slippage", strconv.FormatFloat(float64(c.slippageBps)/10000, 'f', -1, 64))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", types.ErrProvider, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", types.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerStatusError(c.Name(), resp.StatusCode, body)
	}

	var quote lifiQuoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("%w: decoding quote: %v", types.ErrProvider, err)
	}

	route, err := c.buildRoute(&quote, req)
	if err != nil {
		return nil, err
	}

	c.log.Debug("li.fi quote received",
		zap.String("route", route.Name),
		zap.String("amount_out", route.AmountOut.String()))

	return []*types.Route{route}, nil
}

func (c *LiFiClient) buildRoute(quote *lifiQuoteResponse, req *types.TransferRequest) (*types.Route, error) {
	amountOut, ok := new(big.Int).SetString(quote.Estimate.ToAmount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: unparseable toAmount %q", types.ErrProvider, quote.Estimate.ToAmount)
	}

	tool := quote.Tool
	if len(quote.IncludedSteps) > 0 {
		steps := make([]string, 0, len(quote.IncludedSteps))
		for _, s := range quote.IncludedSteps {
			steps = append(steps, s.Tool)
		}
		tool = strings.Join(steps, " > ")
	}
	if tool == "" {
		tool = "direct"
	}

	txReq, err := parseTxRequest(quote.TransactionRequest.To, quote.TransactionRequest.Data,
		quote.TransactionRequest.Value, quote.TransactionRequest.GasLimit, quote.TransactionRequest.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction request: %v", types.ErrProvider, err)
	}
	if txReq.ChainID == 0 {
		txReq.ChainID = req.FromChainID
	}

	fee := new(big.Int).Sub(req.AmountUnits, amountOut)
	return &types.Route{
		ID:              quote.ID,
		Name:            fmt.Sprintf("via %s (%s)", c.Name(), tool),
		Provider:        c.Name(),
		AmountOut:       amountOut,
		TotalCostUSD:    types.FormatUnits(fee, chains.USDCDecimals),
		FeeBreakdown:    feeBreakdown(req.AmountUnits, amountOut),
		DurationSeconds: quote.Estimate.ExecutionDuration,
		Confidence:      types.ConfidenceFromScore(lifiSecurityScore),
		ApprovalTarget:  common.HexToAddress(quote.Estimate.ApprovalAddress),
		Payload:         types.PrebuiltPayload{Tx: *txReq},
	}, nil
}
