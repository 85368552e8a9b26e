package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"boost-swap/pkg/runner"
	"boost-swap/pkg/swap"
)

var (
	fromAccount string
	toAccount   string
	noConfirm   bool
	detach      bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-asset> to <dest-token>",
	Short: "Start a composite swap and drive it to completion",
	Long: `Swap a native asset for a token on another chain.

The first leg locks the source asset with a market maker agent in exchange
for the native asset of the destination chain. Once that claim is confirmed
the second leg swaps it for the token through the 1Click API.

The swap is saved before anything is sent, so an interrupted swap can be
picked up again with 'boost-swap resume'.

Examples:
  boost-swap swap 1 BTC to DAI
  boost-swap swap 0.5 BTC to USDC --to-account 0x123... --yes
  boost-swap swap 1 BTC to DAI --detach`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&fromAccount, "from-account", "", "Refund address on the source chain (defaults to wallet.addresses)")
	swapCmd.Flags().StringVar(&toAccount, "to-account", "", "Receiving address on the destination chain (defaults to wallet.addresses)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().BoolVar(&detach, "detach", false, "Save the swap without driving it")
}

func runSwap(cmd *cobra.Command, args []string) {
	req := parseRequest(args)
	req.FromAccount = fromAccount
	req.ToAccount = toAccount

	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp()
	defer a.close()

	if req.FromAccount == "" {
		req.FromAccount = a.account(req.From)
	}
	if req.ToAccount == "" {
		req.ToAccount = a.account(req.To)
	}
	if req.ToAccount == "" {
		printError(fmt.Errorf("no receiving address for %s. Use --to-account or set wallet.addresses in .boost-swap.yaml", req.To))
		os.Exit(1)
	}

	quote := fetchQuote(cmd, a, req)
	if !jsonOutput {
		displayQuote(quoteDisplay(quote))
	}

	if !noConfirm && !a.cfg.AutoConfirm && !jsonOutput {
		if !confirm("Proceed with swap?") {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	s, err := a.provider.NewSwap(cmd.Context(), a.network, a.cfg.WalletID, *quote)
	if err != nil {
		printError(fmt.Errorf("failed to start swap: %w", err))
		os.Exit(1)
	}
	if err := a.store.Create(s); err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(s, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		color.Green("\n✓ Swap created")
		fmt.Printf("  Swap ID: %s\n", color.CyanString(s.ID))
	}

	if detach {
		if !jsonOutput {
			fmt.Println("\nDrive the swap using:")
			color.Cyan("  boost-swap resume %s\n", s.ID)
		}
		return
	}

	final, err := driveSwap(cmd.Context(), a, s, jsonOutput)
	reportRun(final, err, a.provider.Statuses())
}

// driveSwap runs one swap with a spinner showing its current label
func driveSwap(ctx context.Context, a *app, s *swap.Swap, quiet bool) (*swap.Swap, error) {
	statuses := a.provider.Statuses()

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !quiet {
		sp.Suffix = " " + progress(s, statuses, a.provider.TotalSteps())
		sp.Start()
		defer sp.Stop()
	}

	var observer runner.Observer = func(updated *swap.Swap, n *swap.Notification) {
		if quiet {
			return
		}
		sp.Lock()
		sp.Suffix = " " + progress(updated, statuses, a.provider.TotalSteps())
		sp.Unlock()
		if n != nil {
			sp.Stop()
			color.Cyan("\n%s", n.Title)
			fmt.Printf("  %s\n", n.Message)
			sp.Start()
		}
	}

	return a.runner(observer).Run(ctx, s.ID)
}

func reportRun(s *swap.Swap, err error, statuses swap.StatusTable) {
	switch {
	case errors.Is(err, context.Canceled):
		color.Yellow("\nStopped. The swap is saved and can be resumed.")
		if s != nil {
			color.Cyan("  boost-swap resume %s\n", s.ID)
		}
	case err != nil:
		printError(err)
		os.Exit(1)
	case statuses[s.Status].Failed:
		color.Red("\n✗ Swap %s ended with %s", s.ID, s.Status)
		os.Exit(1)
	default:
		printSuccess(color.GreenString("✓ Swap %s completed", s.ID))
	}
}

// progress renders "[##---] 2/5 Claiming ETH"
func progress(s *swap.Swap, statuses swap.StatusTable, totalSteps int) string {
	d, ok := statuses[s.Status]
	if !ok {
		return s.Status
	}

	step := d.Step + 1
	if step > totalSteps {
		step = totalSteps
	}
	bar := make([]byte, totalSteps)
	for i := range bar {
		if i < step {
			bar[i] = '#'
		} else {
			bar[i] = '-'
		}
	}
	return fmt.Sprintf("[%s] %d/%d %s", bar, step, totalSteps, swap.RenderLabel(d.Label, s))
}
