package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	PrivateKey       string
	LiFiBaseURL      string
	SymbiosisBaseURL string
	RPCOverrides     map[string]string // chain key -> RPC URL
	Recipient        string            // default TON recipient
	SlippageBps      int
	AutoConfirm      bool
	HistoryFile      string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".tonbridge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("lifi_base_url", "https://li.quest/v1")
	viper.SetDefault("symbiosis_base_url", "https://api.symbiosis.finance/crosschain")
	viper.SetDefault("slippage_bps", 300)
	viper.SetDefault("auto_confirm", false)

	// Read from environment variables
	viper.SetEnvPrefix("TONBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		PrivateKey:       viper.GetString("private_key"),
		LiFiBaseURL:      viper.GetString("lifi_base_url"),
		SymbiosisBaseURL: viper.GetString("symbiosis_base_url"),
		RPCOverrides:     viper.GetStringMapString("rpc"),
		Recipient:        viper.GetString("recipient"),
		SlippageBps:      viper.GetInt("slippage_bps"),
		AutoConfirm:      viper.GetBool("auto_confirm"),
		HistoryFile:      viper.GetString("history_file"),
	}

	globalConfig = cfg
	return cfg, nil
}

// RequireSigner validates that a private key is configured. Commands that only
// read chain state or fetch quotes do not need one.
func (c *Config) RequireSigner() error {
	if c.PrivateKey == "" {
		return fmt.Errorf("private key not found. Set TONBRIDGE_PRIVATE_KEY or add private_key to your .tonbridge.yaml config file")
	}
	return nil
}

// RPCUrl returns the configured RPC URL override for a chain key, if any
func (c *Config) RPCUrl(chainKey string) string {
	if c.RPCOverrides == nil {
		return ""
	}
	return c.RPCOverrides[strings.ToLower(chainKey)]
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
