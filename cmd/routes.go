package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tonbridge/config"
	"tonbridge/pkg/chains"
	"tonbridge/pkg/client"
	"tonbridge/pkg/parser"
	"tonbridge/pkg/types"
)

var (
	routesFromChain string
	routesRecipient string
)

var routesCmd = &cobra.Command{
	Use:   "routes <amount> from <chain> [to <recipient>]",
	Short: "Compare bridge routes without executing",
	Long: `Fetch quotes from every route provider and show them side by side,
best route first. No wallet is required; quoting is read-only.

Examples:
  tonbridge routes 500 from base to UQAbc...xyz
  tonbridge routes 100 usdc from arbitrum --recipient UQAbc...xyz`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVar(&routesFromChain, "from-chain", "", "Source chain (optional, can be part of the command)")
	routesCmd.Flags().StringVar(&routesRecipient, "recipient", "", "TON wallet that receives the USDC")
}

func runRoutes(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	log := newLogger(verbose)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	req, err := buildTransferRequest(args, routesFromChain, routesRecipient, cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	aggregator := newAggregator(cfg, log)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Comparing routes..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	routes, err := aggregator.FetchRoutes(ctx, req)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printRoutesJSON(routes, req)
		return
	}

	displayRoutes(routes, req)
}

// buildTransferRequest parses the free-form command, applies flag overrides
// and config defaults, and validates the result.
func buildTransferRequest(args []string, fromChain, recipient string, cfg *config.Config) (*types.TransferRequest, error) {
	req, err := parser.ParseBridgeCommand(strings.Join(args, " "))
	if err != nil {
		return nil, err
	}

	if fromChain != "" {
		chain, err := chains.ByKey(strings.ToLower(fromChain))
		if err != nil {
			return nil, err
		}
		req.FromChainID = chain.ID
	}
	if recipient != "" {
		req.Recipient = recipient
	}
	if req.Recipient == "" {
		req.Recipient = cfg.Recipient
	}

	if cfg.PrivateKey != "" {
		// quoting wants the sender for accurate gas estimates; derive it
		// lazily only when a signer is configured
		if addr, err := senderAddress(cfg); err == nil {
			req.Sender = addr
		}
	}

	if err := parser.ValidateTransferRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

func newAggregator(cfg *config.Config, log *zap.Logger) *client.Aggregator {
	return client.NewAggregator(log,
		client.NewLiFiClient(cfg.LiFiBaseURL, cfg.SlippageBps, log),
		client.NewSymbiosisClient(cfg.SymbiosisBaseURL, cfg.SlippageBps, log),
	)
}

func displayRoutes(routes []*types.Route, req *types.TransferRequest) {
	chain, _ := chains.ByID(req.FromChainID)

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     BRIDGE ROUTES")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Transfer:  %s USDC from %s to TON\n", req.Amount, chain.Name)
	fmt.Printf("  Recipient: %s\n\n", color.CyanString(req.Recipient))

	for i, route := range routes {
		marker := " "
		if route.IsBest {
			marker = color.GreenString("*")
		}
		fmt.Printf("%s %d. %s\n", marker, i+1, color.YellowString(route.Name))
		fmt.Printf("     Receive:    ~%s USDC\n", types.FormatUnits(route.AmountOut, chains.USDCDecimals))
		if route.TotalCostUSD != "" {
			fmt.Printf("     Fees:       $%s %s\n", route.TotalCostUSD, route.FeeBreakdown)
		}
		fmt.Printf("     Duration:   %s\n", route.DurationDisplay())
		fmt.Printf("     Confidence: %s\n\n", confidenceString(route.Confidence))
	}

	if diff := client.Savings(routes); diff != nil {
		color.Green("  Best route delivers %s USDC more than the next option.\n",
			types.FormatUnits(diff, chains.USDCDecimals))
	}

	fmt.Println(strings.Repeat("=", 60) + "\n")
}

func confidenceString(c types.Confidence) string {
	switch c {
	case types.ConfidenceHigh:
		return color.GreenString("high")
	case types.ConfidenceMedium:
		return color.YellowString("medium")
	default:
		return color.RedString("low")
	}
}

func printRoutesJSON(routes []*types.Route, req *types.TransferRequest) {
	type routeOut struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Provider     string `json:"provider"`
		AmountOut    string `json:"amount_out"`
		TotalCostUSD string `json:"total_cost_usd,omitempty"`
		FeeBreakdown string `json:"fee_breakdown,omitempty"`
		DurationSec  int    `json:"duration_seconds"`
		Confidence   string `json:"confidence"`
		IsBest       bool   `json:"is_best"`
	}

	out := struct {
		Amount    string     `json:"amount"`
		FromChain int64      `json:"from_chain_id"`
		Recipient string     `json:"recipient"`
		Routes    []routeOut `json:"routes"`
	}{
		Amount:    req.Amount,
		FromChain: req.FromChainID,
		Recipient: req.Recipient,
	}
	for _, r := range routes {
		out.Routes = append(out.Routes, routeOut{
			ID:           r.ID,
			Name:         r.Name,
			Provider:     r.Provider,
			AmountOut:    types.FormatUnits(r.AmountOut, chains.USDCDecimals),
			TotalCostUSD: r.TotalCostUSD,
			FeeBreakdown: r.FeeBreakdown,
			DurationSec:  r.DurationSeconds,
			Confidence:   string(r.Confidence),
			IsBest:       r.IsBest,
		})
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

// senderAddress derives the signer address from the configured private key
// without dialing any RPC.
func senderAddress(cfg *config.Config) (common.Address, error) {
	w, err := walletFromConfig(cfg, zap.NewNop())
	if err != nil {
		return common.Address{}, err
	}
	defer w.Close()
	return w.Address(), nil
}
