package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"boost-swap/config"
	"boost-swap/pkg/log"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "boost-swap",
	Short: "A CLI for composite atomic + DEX swaps",
	Long: `boost-swap sells a native asset for a token on another chain in two legs.
The first leg is an atomic swap with a market maker agent into the native
asset of the destination chain, the second leg swaps that asset for the
token through the 1Click API.

Examples:
  boost-swap quote 1 BTC to DAI
  boost-swap fees 1 BTC to DAI
  boost-swap swap 0.5 BTC to USDC
  boost-swap resume
  boost-swap status <swap-id>
  boost-swap history --filter PENDING`,
	Version:          "0.1.0",
	PersistentPreRun: loadConfig,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so running swaps stop at their next step.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("network", "", "Network to use (mainnet or testnet)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

func loadConfig(cmd *cobra.Command, args []string) {
	loaded, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if network, _ := cmd.Flags().GetString("network"); network != "" {
		loaded.Network = network
		if err := loaded.Validate(); err != nil {
			printError(err)
			os.Exit(1)
		}
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		loaded.Log.Level = "debug"
	}
	if logJSON, _ := cmd.Flags().GetBool("log-json"); logJSON {
		loaded.Log.JSON = true
	}

	if err := log.Setup(loaded.Log.Level, loaded.Log.JSON, loaded.Log.Color); err != nil {
		printError(fmt.Errorf("invalid log level %q: %w", loaded.Log.Level, err))
		os.Exit(1)
	}

	config.Set(loaded)
	cfg = loaded
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
