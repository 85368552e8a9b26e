package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Network     string `mapstructure:"network"`
	WalletID    string `mapstructure:"wallet_id"`
	StorePath   string `mapstructure:"store_path"`
	AutoConfirm bool   `mapstructure:"auto_confirm"`

	Log      LogConfig      `mapstructure:"log"`
	Poll     PollConfig     `mapstructure:"poll"`
	Agent    AgentConfig    `mapstructure:"agent"`
	OneClick OneClickConfig `mapstructure:"oneclick"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Deposit  DepositConfig  `mapstructure:"deposit"`

	// Fee prices per chain and level, in the chain's fee unit
	FeePrices map[string]map[string]string `mapstructure:"fee_prices"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	Color bool   `mapstructure:"color"`
}

// PollConfig controls how swaps are driven
type PollConfig struct {
	Interval    time.Duration `mapstructure:"interval"`     // between two steps of the runner
	Handoff     time.Duration `mapstructure:"handoff"`      // between two claim confirmation checks
	Jitter      time.Duration `mapstructure:"jitter"`       // random extra wait on top of handoff
	MaxAttempts int           `mapstructure:"max_attempts"` // claim confirmation checks per step
}

// AgentConfig locates the market maker agents
type AgentConfig struct {
	Mainnet string        `mapstructure:"mainnet"`
	Testnet string        `mapstructure:"testnet"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OneClickConfig holds 1Click API credentials
type OneClickConfig struct {
	JWTToken string `mapstructure:"jwt_token"`
}

// WalletConfig lists receiving addresses per chain name
type WalletConfig struct {
	Addresses map[string]string `mapstructure:"addresses"`
}

// DepositConfig configures the signers funding DEX deposits
type DepositConfig struct {
	EVM    EVMConfig    `mapstructure:"evm"`
	Solana SolanaConfig `mapstructure:"solana"`
}

// EVMConfig holds EVM networks keyed by chain name
type EVMConfig struct {
	Networks map[string]EVMNetwork `mapstructure:"networks"`
}

// EVMNetwork configures a single EVM chain
type EVMNetwork struct {
	RPCUrl        string  `mapstructure:"rpc_url"`
	ChainID       int64   `mapstructure:"chain_id"`
	PrivateKey    string  `mapstructure:"private_key"`
	GasLimit      *uint64 `mapstructure:"gas_limit"`
	GasPrice      *int64  `mapstructure:"gas_price"` // wei
	Confirmations uint64  `mapstructure:"confirmations"`
}

// SolanaConfig configures the Solana signer
type SolanaConfig struct {
	RPCUrl        string `mapstructure:"rpc_url"`
	PrivateKey    string `mapstructure:"private_key"` // base58
	Commitment    string `mapstructure:"commitment"`
	SkipPreflight bool   `mapstructure:"skip_preflight"`
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.GetViper()
	v.SetConfigName(".boost-swap")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	setDefaults(v)

	// Read from environment variables, e.g. BOOST_SWAP_ONECLICK_JWT_TOKEN
	v.SetEnvPrefix("BOOST_SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"oneclick.jwt_token", "agent.mainnet", "agent.testnet", "deposit.solana.private_key"} {
		_ = v.BindEnv(key)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "mainnet")
	v.SetDefault("wallet_id", "default")
	v.SetDefault("store_path", defaultStorePath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.color", true)
	v.SetDefault("poll.interval", 15*time.Second)
	v.SetDefault("poll.handoff", 15*time.Second)
	v.SetDefault("poll.jitter", 15*time.Second)
	v.SetDefault("poll.max_attempts", 4)
	v.SetDefault("agent.timeout", 30*time.Second)
	v.SetDefault("fee_prices", map[string]interface{}{
		"bitcoin":  map[string]interface{}{"slow": "5", "average": "10", "fast": "20"},
		"ethereum": map[string]interface{}{"slow": "10", "average": "20", "fast": "40"},
		"polygon":  map[string]interface{}{"slow": "30", "average": "50", "fast": "100"},
		"bsc":      map[string]interface{}{"slow": "1", "average": "3", "fast": "5"},
		"solana":   map[string]interface{}{"slow": "5000", "average": "5000", "fast": "10000"},
	})
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boost-swap/swaps.json"
	}
	return home + "/.boost-swap/swaps.json"
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Network {
	case "mainnet", "testnet":
	default:
		return fmt.Errorf("invalid network %q: must be mainnet or testnet", c.Network)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store_path must not be empty")
	}
	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("poll.max_attempts must be positive")
	}
	return nil
}

// AgentURL returns the agent endpoint for the configured network
func (c *Config) AgentURL() (string, error) {
	url := c.Agent.Mainnet
	if c.Network == "testnet" {
		url = c.Agent.Testnet
	}
	if url == "" {
		return "", fmt.Errorf("agent URL not configured for %s. Please set agent.%s in .boost-swap.yaml or BOOST_SWAP_AGENT_%s", c.Network, c.Network, strings.ToUpper(c.Network))
	}
	return url, nil
}

// RequireOneClick fails when the 1Click API token is missing
func (c *Config) RequireOneClick() error {
	if c.OneClick.JWTToken == "" {
		return fmt.Errorf("JWT token not found. Please set BOOST_SWAP_ONECLICK_JWT_TOKEN environment variable or oneclick.jwt_token in .boost-swap.yaml")
	}
	return nil
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
