package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"boost-swap/pkg/asset"
	"boost-swap/pkg/client"
)

var (
	filterChain  string
	filterSymbol string
	checkRemote  bool
)

var assetsCmd = &cobra.Command{
	Use:     "list-assets",
	Aliases: []string{"assets", "ls"},
	Short:   "List the assets the wallet knows",
	Long: `List every asset known to the wallet, grouped by chain. Tokens can be the
destination of a boost swap, native assets its source.

With --remote each asset is checked against the tokens supported by the
1Click API.

Examples:
  boost-swap list-assets
  boost-swap list-assets --chain ethereum
  boost-swap list-assets --symbol USDC --remote`,
	Run: runListAssets,
}

func init() {
	rootCmd.AddCommand(assetsCmd)

	assetsCmd.Flags().StringVar(&filterChain, "chain", "", "Filter by blockchain")
	assetsCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by asset symbol")
	assetsCmd.Flags().BoolVar(&checkRemote, "remote", false, "Check 1Click support for each asset")
}

type assetRow struct {
	asset.Asset
	Routable *bool `json:"routable,omitempty"`
}

func runListAssets(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Apply filters
	var filtered []asset.Asset
	for _, a := range asset.List() {
		if filterChain != "" && !strings.EqualFold(a.Chain, filterChain) {
			continue
		}
		if filterSymbol != "" && !strings.Contains(strings.ToUpper(a.Symbol), strings.ToUpper(filterSymbol)) {
			continue
		}
		filtered = append(filtered, a)
	}

	rows := make([]assetRow, len(filtered))
	for i, a := range filtered {
		rows[i] = assetRow{Asset: a}
	}

	if checkRemote {
		if err := cfg.RequireOneClick(); err != nil {
			printError(err)
			os.Exit(1)
		}

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		if !jsonOutput {
			s.Suffix = " Fetching supported tokens..."
			s.Start()
		}

		tokens, err := client.NewOneClickClient(cfg.OneClick.JWTToken).GetSupportedTokens(cmd.Context())
		if !jsonOutput {
			s.Stop()
		}
		if err != nil {
			printError(err)
			os.Exit(1)
		}

		for i := range rows {
			routable := supported(tokens, rows[i].Asset)
			rows[i].Routable = &routable
		}
	}

	// Output
	if jsonOutput {
		jsonData, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayAssets(rows)
	}
}

func supported(tokens []oneclick.TokenResponse, a asset.Asset) bool {
	c, err := asset.ChainByName(a.Chain)
	if err != nil {
		return false
	}
	for _, token := range tokens {
		if strings.EqualFold(token.GetBlockchain(), c.OneClickChain) && strings.EqualFold(token.GetSymbol(), a.Symbol) {
			return true
		}
	}
	return false
}

func displayAssets(rows []assetRow) {
	if len(rows) == 0 {
		fmt.Println("\nNo assets found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                              KNOWN ASSETS")
	fmt.Println(strings.Repeat("=", 90))

	// Group assets by blockchain
	byChain := make(map[string][]assetRow)
	for _, r := range rows {
		byChain[r.Chain] = append(byChain[r.Chain], r)
	}

	chains := make([]string, 0, len(byChain))
	for chain := range byChain {
		chains = append(chains, chain)
	}
	sort.Strings(chains)

	for _, chain := range chains {
		color.Cyan("\n%s", strings.ToUpper(chain))
		fmt.Println(strings.Repeat("-", 90))

		for _, r := range byChain[chain] {
			role := "source"
			if r.Type != asset.TypeNative {
				role = "destination"
			}

			contract := r.Contract
			// Truncate address if too long
			if len(contract) > 40 {
				contract = contract[:37] + "..."
			}

			remote := ""
			if r.Routable != nil {
				if *r.Routable {
					remote = color.GreenString("1click")
				} else {
					remote = color.RedString("no route")
				}
			}

			fmt.Printf("  %-10s  %-7s  %2d decimals  %-11s  %-8s  %s\n",
				color.YellowString(r.Code),
				r.Type,
				r.Decimals,
				role,
				remote,
				color.HiBlackString(contract))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d assets across %d blockchains\n\n", len(rows), len(chains))
}
