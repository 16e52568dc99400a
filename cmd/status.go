package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tonbridge/config"
	"tonbridge/pkg/chains"
	"tonbridge/pkg/wallet"
)

var (
	statusChain string
	watchStatus bool
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a bridge transaction",
	Long: `Look up the source-chain receipt of a bridge transaction.

Examples:
  tonbridge status 0x1234...abcd --chain base
  tonbridge status 0x1234...abcd --chain base --watch`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusChain, "chain", "", "Source chain of the transaction (REQUIRED)")
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch until the transaction is included")
	statusCmd.MarkFlagRequired("chain")
}

func runStatus(cmd *cobra.Command, args []string) {
	txHash := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	log := newLogger(verbose)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	chain, err := chains.ByKey(statusChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := cfg.RequireSigner(); err != nil {
		printError(err)
		os.Exit(1)
	}

	w, err := walletFromConfig(cfg, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer w.Close()

	timeout := 30 * time.Second
	if watchStatus {
		timeout = 30 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if watchStatus {
		if jsonOutput {
			fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
			os.Exit(1)
		}
		fmt.Printf("\nWaiting for %s on %s. Press Ctrl+C to stop.\n", color.CyanString(txHash), chain.Name)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction..."
		s.Start()
	}

	receipt, err := w.WaitForReceipt(ctx, chain.ID, txHash)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(receipt, "", "  ")
		fmt.Println(string(data))
		return
	}

	displayReceipt(receipt, chain)
}

func displayReceipt(receipt *wallet.Receipt, chain chains.Chain) {
	fmt.Println()
	if receipt.Success {
		color.Green("Transaction confirmed")
	} else {
		color.Red("Transaction reverted")
	}
	fmt.Printf("  Chain:    %s\n", chain.Name)
	fmt.Printf("  Block:    %d\n", receipt.BlockNumber)
	fmt.Printf("  Gas used: %d\n", receipt.GasUsed)
	fmt.Printf("  Explorer: %s\n\n", color.CyanString(chain.ExplorerTxURL(receipt.TxHash)))
}
