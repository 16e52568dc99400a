package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "tonbridge",
	Short: "A CLI for bridging USDC from EVM chains to TON",
	Long: `tonbridge compares cross-chain routes from Li.Fi and Symbiosis, picks the
one that delivers the most USDC to your TON wallet, and executes the
transfer end to end: network check, token approval, and bridge transaction.

Examples:
  tonbridge routes 500 from base to UQAbc...xyz
  tonbridge bridge 500 from base to UQAbc...xyz
  tonbridge bridge 100 usdc from arbitrum
  tonbridge status 0x1234...abcd --chain base --watch
  tonbridge chains
  tonbridge history --limit 10`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

// newLogger builds the CLI logger: human-readable debug output in verbose
// mode, silent otherwise.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
