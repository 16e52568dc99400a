package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tonbridge/config"
	"tonbridge/pkg/chains"
	"tonbridge/pkg/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past bridge transfers",
	Long: `List transfers recorded by this tool, newest first.

Examples:
  tonbridge history
  tonbridge history --limit 5`,
	Run: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of transfers to show (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	store, err := history.NewStore(cfg.HistoryFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	records := store.List(historyLimit)

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(records) == 0 {
		fmt.Println("\nNo transfers recorded yet.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  TRANSFER HISTORY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
	for _, rec := range records {
		fmt.Printf("  %s  %s USDC from %s\n",
			rec.Timestamp.Local().Format("2006-01-02 15:04"),
			color.YellowString(rec.Amount),
			rec.SourceChain)
		fmt.Printf("    Route:  %s\n", rec.RouteName)
		fmt.Printf("    To:     %s\n", rec.Recipient)
		fmt.Printf("    Status: %s\n", statusString(rec.Status))
		if rec.TxHash != "" {
			if chain, err := chains.ByKey(rec.SourceChain); err == nil {
				fmt.Printf("    Tx:     %s\n", color.CyanString(chain.ExplorerTxURL(rec.TxHash)))
			} else {
				fmt.Printf("    Tx:     %s\n", color.CyanString(rec.TxHash))
			}
		}
		if rec.Error != "" {
			fmt.Printf("    Error:  %s\n", rec.Error)
		}
		fmt.Println()
	}
	fmt.Println(strings.Repeat("=", 60) + "\n")
}

func statusString(status string) string {
	switch status {
	case "success":
		return color.GreenString(status)
	case "error":
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}
