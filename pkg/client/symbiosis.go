package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tonbridge/pkg/chains"
	"tonbridge/pkg/types"
)

const symbiosisSecurityScore = 7

// SymbiosisClient fetches bridge quotes from the Symbiosis API. Unlike Li.Fi,
// a Symbiosis quote carries only a route reference; the transaction request
// is materialized with a second call when the route is executed.
type SymbiosisClient struct {
	baseURL     string
	slippageBps int
	httpc       *http.Client
	log         *zap.Logger
}

// NewSymbiosisClient creates a new Symbiosis API client
func NewSymbiosisClient(baseURL string, slippageBps int, log *zap.Logger) *SymbiosisClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &SymbiosisClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		slippageBps: slippageBps,
		httpc:       &http.Client{Timeout: defaultHTTPTimeout},
		log:         log,
	}
}

// Name returns the provider's display name
func (c *SymbiosisClient) Name() string { return "Symbiosis" }

// Ping checks that the Symbiosis API is reachable
func (c *SymbiosisClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpc, c.baseURL+"/v1/health")
}

type symbiosisQuoteRequest struct {
	TokenIn struct {
		ChainID int64  `json:"chainId"`
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"tokenIn"`
	TokenOut struct {
		Chain  string `json:"chain"`
		Symbol string `json:"symbol"`
	} `json:"tokenOut"`
	AmountIn string `json:"amountIn"`
	From     string `json:"from"`
	To       string `json:"to"`
	Slippage int    `json:"slippage"` // basis points
}

type symbiosisQuoteResponse struct {
	QuoteID       string `json:"quoteId"`
	Route         string `json:"route"`
	AmountOut     string `json:"amountOut"`
	ApproveTo     string `json:"approveTo"`
	EstimatedTime int    `json:"estimatedTime"`
}

type symbiosisTxResponse struct {
	ChainID int64  `json:"chainId"`
	To      string `json:"to"`
	Data    string `json:"data"`
	Value   string `json:"value"`
}

// FetchRoutes requests a quote for the transfer and normalizes it to a Route.
// The returned route's payload defers the transaction build to execution time.
func (c *SymbiosisClient) FetchRoutes(ctx context.Context, req *types.TransferRequest) ([]*types.Route, error) {
	usdc, err := usdcAddressFor(req.FromChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnsupportedPair, err)
	}

	var quoteReq symbiosisQuoteRequest
	quoteReq.TokenIn.ChainID = req.FromChainID
	quoteReq.TokenIn.Address = usdc.Hex()
	quoteReq.TokenIn.Symbol = "USDC"
	quoteReq.TokenOut.Chain = chains.TONChainKey
	quoteReq.TokenOut.Symbol = "USDC"
	quoteReq.AmountIn = req.AmountUnits.String()
	quoteReq.From = req.Sender.Hex()
	quoteReq.To = req.Recipient
	quoteReq.Slippage = c.slippageBps

	var quote symbiosisQuoteResponse
	if err := c.post(ctx, "/v1/swap", quoteReq, &quote); err != nil {
		return nil, err
	}

	amountOut, ok := new(big.Int).SetString(quote.AmountOut, 10)
	if !ok {
		return nil, fmt.Errorf("%w: unparseable amountOut %q", types.ErrProvider, quote.AmountOut)
	}

	routeName := quote.Route
	if routeName == "" {
		routeName = "octopool"
	}

	quoteID := quote.QuoteID
	fee := new(big.Int).Sub(req.AmountUnits, amountOut)
	route := &types.Route{
		ID:              quoteID,
		Name:            fmt.Sprintf("via %s (%s)", c.Name(), routeName),
		Provider:        c.Name(),
		AmountOut:       amountOut,
		TotalCostUSD:    types.FormatUnits(fee, chains.USDCDecimals),
		FeeBreakdown:    feeBreakdown(req.AmountUnits, amountOut),
		DurationSeconds: quote.EstimatedTime,
		Confidence:      types.ConfidenceFromScore(symbiosisSecurityScore),
		ApprovalTarget:  common.HexToAddress(quote.ApproveTo),
		Payload: types.DeferredPayload{
			Fetch: func(ctx context.Context) (*types.TxRequest, error) {
				return c.fetchTransaction(ctx, quoteID, req.FromChainID)
			},
		},
	}

	c.log.Debug("symbiosis quote received",
		zap.String("quote_id", quoteID),
		zap.String("amount_out", amountOut.String()))

	return []*types.Route{route}, nil
}

// fetchTransaction materializes the transaction request for a quoted route
func (c *SymbiosisClient) fetchTransaction(ctx context.Context, quoteID string, chainID int64) (*types.TxRequest, error) {
	if quoteID == "" {
		return nil, fmt.Errorf("%w: quote carries no reference", types.ErrProvider)
	}

	var txResp symbiosisTxResponse
	if err := c.get(ctx, "/v1/swap/"+quoteID+"/transaction", &txResp); err != nil {
		return nil, err
	}

	txReq, err := parseTxRequest(txResp.To, txResp.Data, txResp.Value, "", txResp.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction request: %v", types.ErrProvider, err)
	}
	if txReq.ChainID == 0 {
		txReq.ChainID = chainID
	}
	return txReq, nil
}

func (c *SymbiosisClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", types.ErrProvider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", types.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *SymbiosisClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", types.ErrProvider, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *SymbiosisClient) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", types.ErrProvider, err)
	}

	c.log.Debug("symbiosis request",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return providerStatusError(c.Name(), resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", types.ErrProvider, err)
	}
	return nil
}
