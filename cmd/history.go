package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"boost-swap/pkg/format"
	"boost-swap/pkg/swap"
)

var historyFilter string

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"list"},
	Short:   "List saved swaps",
	Long: `List saved swaps, newest first.

Examples:
  boost-swap history
  boost-swap history --filter PENDING
  boost-swap history --filter COMPLETED --json`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFilter, "filter", "", "Only show PENDING, COMPLETED, REFUNDED or FAILED swaps")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp()
	defer a.close()

	statuses := a.provider.Statuses()

	var swaps []*swap.Swap
	switch filter := strings.ToUpper(historyFilter); filter {
	case "":
		swaps = a.store.List()
	case swap.FilterPending, swap.FilterCompleted, swap.FilterRefunded, swap.FilterFailed:
		swaps = a.store.ListByFilter(statuses, filter)
	default:
		printError(fmt.Errorf("invalid filter %q", historyFilter))
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(swaps, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(swaps) == 0 {
		fmt.Println("\nNo swaps found.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 100))
	color.Green("                                        SWAP HISTORY")
	fmt.Println(strings.Repeat("=", 100))

	for _, s := range swaps {
		fmt.Printf("\n  %s  %s\n", color.CyanString(s.ID), coloredStatus(s.Status, statuses))
		fmt.Printf("    %s (%s) -> %s -> %s (%s)\n",
			format.Amount(s.FromAmount, s.From), a.provider.FromTxType(),
			format.Amount(s.BridgeAssetAmount, s.BridgeAsset),
			format.Amount(s.ToAmount, s.To), a.provider.ToTxType())
		fmt.Printf("    %s\n", color.HiBlackString(formatTime(s.StartTime)))
	}

	fmt.Println("\n" + strings.Repeat("=", 100))
	fmt.Printf("\nTotal: %d swap(s) in %s\n\n", len(swaps), a.store.GetFilePath())
}
