package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"boost-swap/pkg/asset"
	"boost-swap/pkg/format"
	"boost-swap/pkg/parser"
	"boost-swap/pkg/swap"
	"boost-swap/pkg/types"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <source-asset> to <dest-token>",
	Short: "Price a composite swap without starting it",
	Long: `Price a swap of a native asset into a token on another chain.

The source must be a native asset and the destination a token. The route
goes through the native asset of the destination chain.

Examples:
  boost-swap quote 1 BTC to DAI
  boost-swap quote 0.25 BTC to USDC --json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func parseRequest(args []string) *types.SwapRequest {
	req, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := parser.ValidateSwapRequest(req); err != nil {
		printError(err)
		os.Exit(1)
	}
	return req
}

// fetchQuote prices the request, exiting when there is no route
func fetchQuote(cmd *cobra.Command, a *app, req *types.SwapRequest) *swap.Quote {
	if err := a.cfg.RequireOneClick(); err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := a.provider.GetQuote(cmd.Context(), a.network, req.From, req.To, req.Amount)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(fmt.Errorf("failed to get quote: %w", err))
		os.Exit(1)
	}
	if quote == nil {
		printError(fmt.Errorf("no boost route from %s to %s for %s %s", req.From, req.To, req.Amount, req.From))
		os.Exit(1)
	}

	quote.FromAccountID = req.FromAccount
	quote.ToAccountID = req.ToAccount
	return quote
}

func runQuote(cmd *cobra.Command, args []string) {
	req := parseRequest(args)
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp()
	defer a.close()

	quote := fetchQuote(cmd, a, req)

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(quote, "", "  ")
		fmt.Println(string(jsonData))
		return
	}
	displayQuote(quoteDisplay(quote))
}

func quoteDisplay(q *swap.Quote) types.QuoteDisplay {
	display := types.QuoteDisplay{
		FromAmount:   format.PrettyBalance(q.FromAmount, q.From),
		From:         q.From,
		ToAmount:     format.PrettyBalance(q.ToAmount, q.To),
		To:           q.To,
		BridgeAmount: format.PrettyBalance(q.BridgeAssetAmount, q.BridgeAsset),
		BridgeAsset:  q.BridgeAsset,
	}

	from, errFrom := asset.UnitToCurrency(q.From, q.FromAmount)
	to, errTo := asset.UnitToCurrency(q.To, q.ToAmount)
	if errFrom == nil && errTo == nil && from.IsPositive() {
		display.Rate = fmt.Sprintf("1 %s = %s %s", q.From, to.Div(from).RoundDown(format.ValueDecimals), q.To)
	}
	return display
}

func displayQuote(q types.QuoteDisplay) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     BOOST QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s %s\n", q.FromAmount, color.YellowString(q.From))
	fmt.Printf("  Via:               %s %s\n", q.BridgeAmount, color.YellowString(q.BridgeAsset))
	fmt.Printf("  To:                ~%s %s\n", q.ToAmount, color.YellowString(q.To))
	if q.Rate != "" {
		fmt.Printf("  Rate:              %s\n", q.Rate)
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
