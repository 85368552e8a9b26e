package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"boost-swap/pkg/swap"
)

var feesCmd = &cobra.Command{
	Use:   "fees <amount> <source-asset> to <dest-token>",
	Short: "Estimate the network fees of a composite swap",
	Long: `Estimate the fees of initiating a swap and of claiming its proceeds.

The claim estimate includes the DEX swap on the destination chain.

Examples:
  boost-swap fees 1 BTC to DAI`,
	Args: cobra.MinimumNArgs(1),
	Run:  runFees,
}

func init() {
	rootCmd.AddCommand(feesCmd)
}

type feeEstimate struct {
	TxType swap.TxType    `json:"tx_type"`
	Asset  string         `json:"asset"`
	Payer  string         `json:"payer"`
	Fees   swap.FeeVector `json:"fees"`
}

func runFees(cmd *cobra.Command, args []string) {
	req := parseRequest(args)
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp()
	defer a.close()

	quote := fetchQuote(cmd, a, req)
	if quote.ToAccountID == "" {
		quote.ToAccountID = a.account(quote.To)
	}

	requests := []struct {
		txType swap.TxType
		asset  string
		payer  string
	}{
		{a.provider.FromTxType(), quote.From, quote.From},
		{swap.TxSwapClaim, quote.To, quote.BridgeAsset},
	}

	estimates := make([]feeEstimate, 0, len(requests))
	for _, r := range requests {
		prices, err := a.feePrices(r.payer)
		if err != nil {
			printError(err)
			os.Exit(1)
		}

		fees, err := a.provider.EstimateFees(cmd.Context(), swap.FeeRequest{
			Network:   a.network,
			WalletID:  a.cfg.WalletID,
			Asset:     r.asset,
			TxType:    r.txType,
			Quote:     *quote,
			FeePrices: prices,
		})
		if err != nil {
			printError(fmt.Errorf("failed to estimate %s fees: %w", r.txType, err))
			os.Exit(1)
		}
		estimates = append(estimates, feeEstimate{TxType: r.txType, Asset: r.asset, Payer: r.payer, Fees: fees})
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(estimates, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    FEE ESTIMATES")
	fmt.Println(strings.Repeat("=", 60))
	for _, e := range estimates {
		color.Cyan("\n%s (%s)", e.TxType, e.Asset)
		for _, level := range e.Fees.Levels() {
			fmt.Printf("  %-8s  %s %s\n", level, e.Fees[level].String(), color.YellowString(e.Payer))
		}
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
