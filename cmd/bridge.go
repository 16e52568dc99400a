package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tonbridge/config"
	"tonbridge/pkg/chains"
	"tonbridge/pkg/history"
	"tonbridge/pkg/orchestrator"
	"tonbridge/pkg/types"
	"tonbridge/pkg/wallet"
)

var (
	bridgeFromChain string
	bridgeRecipient string
	bridgeRouteID   string
	bridgeNoConfirm bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge <amount> from <chain> [to <recipient>]",
	Short: "Bridge USDC to a TON wallet",
	Long: `Quote, compare, and execute a USDC transfer to TON. The best route is
selected automatically; pass --route to pin a specific provider's quote.

The transfer walks through every required step: network check, USDC
approval when the bridge contract needs one, and the bridge transaction
itself. Each step asks for confirmation unless --yes is set.

Examples:
  tonbridge bridge 500 from base to UQAbc...xyz
  tonbridge bridge 100 usdc from arbitrum --recipient UQAbc...xyz
  tonbridge bridge 500 from base to UQAbc...xyz --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().StringVar(&bridgeFromChain, "from-chain", "", "Source chain (optional, can be part of the command)")
	bridgeCmd.Flags().StringVar(&bridgeRecipient, "recipient", "", "TON wallet that receives the USDC")
	bridgeCmd.Flags().StringVar(&bridgeRouteID, "route", "", "Execute a specific route id instead of the best one")
	bridgeCmd.Flags().BoolVarP(&bridgeNoConfirm, "yes", "y", false, "Skip confirmation prompts")
}

func runBridge(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := newLogger(verbose)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := cfg.RequireSigner(); err != nil {
		printError(err)
		os.Exit(1)
	}

	req, err := buildTransferRequest(args, bridgeFromChain, bridgeRecipient, cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	w, err := walletFromConfig(cfg, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer w.Close()
	req.Sender = w.Address()

	aggregator := newAggregator(cfg, log)
	oracle := wallet.NewOracle(w, log)

	skipConfirm := bridgeNoConfirm || cfg.AutoConfirm
	orch := orchestrator.New(w, aggregator, oracle, req,
		orchestrator.WithLogger(log),
		orchestrator.WithConfirm(func(prompt string) bool {
			if skipConfirm {
				return true
			}
			return confirmPrompt(prompt)
		}),
		orchestrator.WithTransitionHook(displayTransition),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Comparing routes..."
	s.Start()
	err = orch.RefreshRoutes(ctx)
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if bridgeRouteID != "" {
		if err := orch.SelectRoute(bridgeRouteID); err != nil {
			printError(err)
			os.Exit(1)
		}
	}

	displayRoutes(orch.Routes(), req)

	if err := orch.Run(ctx); err != nil {
		state := orch.State()
		if state.ErrMessage != "" {
			color.Red("\n%s\n", state.ErrMessage)
		}
		if verbose {
			fmt.Printf("Debug: %v\n", err)
		}
		recordTransfer(cfg, req, orch, log)
		os.Exit(1)
	}

	state := orch.State()
	if state.Status != orchestrator.StatusSuccess {
		// the user declined a step; nothing was submitted
		fmt.Println("\nBridge cancelled.")
		return
	}

	chain, _ := chains.ByID(req.FromChainID)
	color.Green("\nBridge transaction submitted!")
	fmt.Printf("  Route:       %s\n", orch.Route().Name)
	if state.ApprovalTxHash != "" {
		fmt.Printf("  Approval:    %s\n", color.CyanString(chain.ExplorerTxURL(state.ApprovalTxHash)))
	}
	fmt.Printf("  Transaction: %s\n", color.CyanString(chain.ExplorerTxURL(state.TxHash)))
	fmt.Printf("  Recipient:   %s\n", req.Recipient)
	fmt.Println("\nThe TON leg settles in a few minutes. Check the source transaction with:")
	color.Cyan("  tonbridge status %s --chain %s\n", state.TxHash, chain.Key)

	recordTransfer(cfg, req, orch, log)
}

// recordTransfer appends the session outcome to the local history file.
// History failures are logged, never fatal: the transfer already happened.
func recordTransfer(cfg *config.Config, req *types.TransferRequest, orch *orchestrator.Orchestrator, log *zap.Logger) {
	state := orch.State()
	if state.TxHash == "" && state.Status != orchestrator.StatusError {
		return
	}

	store, err := history.NewStore(cfg.HistoryFile)
	if err != nil {
		log.Warn("history unavailable", zap.Error(err))
		return
	}

	chain, _ := chains.ByID(req.FromChainID)
	routeName := ""
	if route := orch.Route(); route != nil {
		routeName = route.Name
	}
	rec := &history.TransferRecord{
		SourceChain:    chain.Key,
		Amount:         req.Amount,
		Recipient:      req.Recipient,
		RouteName:      routeName,
		ApprovalTxHash: state.ApprovalTxHash,
		TxHash:         state.TxHash,
		Status:         string(state.Status),
		Error:          state.ErrMessage,
	}
	if err := store.Append(rec); err != nil {
		log.Warn("failed to record transfer", zap.Error(err))
	}
}

// displayTransition prints a line per pipeline stage.
func displayTransition(state orchestrator.TxState) {
	switch state.Status {
	case orchestrator.StatusSwitchingNetwork:
		fmt.Println("\nSwitching network...")
	case orchestrator.StatusApproving:
		fmt.Println("\nSubmitting USDC approval...")
	case orchestrator.StatusExecuting:
		fmt.Println("\nSubmitting bridge transaction...")
	case orchestrator.StatusPending:
		fmt.Printf("\nTransaction pending: %s\n", color.CyanString(state.TxHash))
	}
}

func confirmPrompt(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func walletFromConfig(cfg *config.Config, log *zap.Logger) (*wallet.EVMWallet, error) {
	return wallet.NewEVMWallet(cfg.PrivateKey, cfg.RPCOverrides, log)
}
