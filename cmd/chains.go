package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tonbridge/pkg/chains"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported source chains",
	Long: `Show every chain USDC can be bridged from, with its chain id and the
canonical USDC contract address. The destination is always TON.`,
	Run: runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, _ []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	supported := chains.Supported()

	if jsonOutput {
		type chainOut struct {
			ID     int64  `json:"chain_id"`
			Key    string `json:"key"`
			Name   string `json:"name"`
			USDC   string `json:"usdc_address"`
			Native string `json:"native_symbol"`
		}
		out := make([]chainOut, 0, len(supported))
		for _, c := range supported {
			out = append(out, chainOut{
				ID:     c.ID,
				Key:    c.Key,
				Name:   c.Name,
				USDC:   c.USDCAddress.Hex(),
				Native: c.NativeSymbol,
			})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                   SUPPORTED CHAINS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
	for _, c := range supported {
		fmt.Printf("  %s (id %d, key %s)\n", color.YellowString(c.Name), c.ID, c.Key)
		fmt.Printf("    USDC: %s\n", c.USDCAddress.Hex())
		fmt.Printf("    Gas:  %s\n\n", c.NativeSymbol)
	}
	fmt.Println("  Destination: TON (USDC, jetton)")
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
