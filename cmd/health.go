package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tonbridge/config"
	"tonbridge/pkg/chains"
	"tonbridge/pkg/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check provider reachability and show the supported route table",
	Long: `Diagnose the tool's working state: whether each route provider API is
reachable, which RPC endpoint each chain will use, whether a signer is
configured, and the full source → destination route table.

Examples:
  tonbridge health
  tonbridge health --json`,
	Run: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

type providerHealth struct {
	Name      string `json:"name"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

func runHealth(cmd *cobra.Command, _ []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	log := newLogger(verbose)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking providers..."
		s.Start()
	}

	lifi := client.NewLiFiClient(cfg.LiFiBaseURL, cfg.SlippageBps, log)
	symbiosis := client.NewSymbiosisClient(cfg.SymbiosisBaseURL, cfg.SlippageBps, log)

	providers := []providerHealth{
		checkProvider(ctx, lifi.Name(), lifi.Ping),
		checkProvider(ctx, symbiosis.Name(), symbiosis.Ping),
	}
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		printHealthJSON(cfg, providers)
		return
	}

	displayHealth(cfg, providers)
}

func checkProvider(ctx context.Context, name string, ping func(context.Context) error) providerHealth {
	h := providerHealth{Name: name, Reachable: true}
	if err := ping(ctx); err != nil {
		h.Reachable = false
		h.Error = err.Error()
	}
	return h
}

func displayHealth(cfg *config.Config, providers []providerHealth) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                       HEALTH")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("\n  Providers:")
	for _, p := range providers {
		if p.Reachable {
			fmt.Printf("    %-12s %s\n", p.Name, color.GreenString("reachable"))
		} else {
			fmt.Printf("    %-12s %s (%s)\n", p.Name, color.RedString("unreachable"), p.Error)
		}
	}

	fmt.Println("\n  Signer:")
	if cfg.PrivateKey != "" {
		fmt.Printf("    %s\n", color.GreenString("configured"))
	} else {
		fmt.Printf("    %s (routes and health work without one)\n", color.YellowString("not configured"))
	}

	fmt.Println("\n  RPC endpoints:")
	for _, c := range chains.Supported() {
		url := cfg.RPCUrl(c.Key)
		note := ""
		if url == "" {
			url = c.DefaultRPC
		} else {
			note = color.YellowString(" (override)")
		}
		fmt.Printf("    %-10s %s%s\n", c.Key, url, note)
	}

	fmt.Println("\n  Routes:")
	for _, c := range chains.Supported() {
		if chains.IsSupportedPair(c.ID, chains.TONChainKey) {
			fmt.Printf("    %s -> TON (USDC)\n", c.Key)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func printHealthJSON(cfg *config.Config, providers []providerHealth) {
	type routeOut struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	type rpcOut struct {
		Chain    string `json:"chain"`
		URL      string `json:"url"`
		Override bool   `json:"override"`
	}

	out := struct {
		Providers []providerHealth `json:"providers"`
		Signer    bool             `json:"signer_configured"`
		RPC       []rpcOut         `json:"rpc_endpoints"`
		Routes    []routeOut       `json:"routes"`
	}{
		Providers: providers,
		Signer:    cfg.PrivateKey != "",
	}
	for _, c := range chains.Supported() {
		url := cfg.RPCUrl(c.Key)
		override := url != ""
		if url == "" {
			url = c.DefaultRPC
		}
		out.RPC = append(out.RPC, rpcOut{Chain: c.Key, URL: url, Override: override})
		if chains.IsSupportedPair(c.ID, chains.TONChainKey) {
			out.Routes = append(out.Routes, routeOut{From: c.Key, To: chains.TONChainKey})
		}
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}
