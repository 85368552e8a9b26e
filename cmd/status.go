package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"boost-swap/pkg/format"
	"boost-swap/pkg/swap"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <swap-id>",
	Short: "Check the status of a swap",
	Long: `Show the recorded progress of a saved swap. The status is read from the
local store; use 'boost-swap resume' to advance it.

Examples:
  boost-swap status 6f1c...
  boost-swap status 6f1c... --watch
  boost-swap status 6f1c... --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	id := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp()
	defer a.close()

	s, err := a.store.Get(id)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(s, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayStatus(a, s)
	if !watchStatus {
		return
	}

	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	statuses := a.provider.Statuses()
	last := s.Status
	for !statuses.IsTerminal(last) {
		select {
		case <-cmd.Context().Done():
			return
		case <-ticker.C:
		}

		// another process drives the swap and rewrites the file
		if err := a.store.Reload(); err != nil {
			color.Red("Error: %v", err)
			continue
		}
		s, err := a.store.Get(id)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		if s.Status != last {
			displayStatus(a, s)
			last = s.Status
		}
	}
}

func displayStatus(a *app, s *swap.Swap) {
	statuses := a.provider.Statuses()

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Swap ID:         %s\n", color.CyanString(s.ID))
	fmt.Printf("  Status:          %s\n", coloredStatus(s.Status, statuses))
	fmt.Printf("  Progress:        %s\n", progress(s, statuses, a.provider.TotalSteps()))
	fmt.Printf("  From:            %s\n", format.Amount(s.FromAmount, s.From))
	fmt.Printf("  Via:             %s\n", format.Amount(s.BridgeAssetAmount, s.BridgeAsset))
	fmt.Printf("  To:              %s\n", format.Amount(s.ToAmount, s.To))
	if s.ToAccountID != "" {
		fmt.Printf("  Recipient:       %s\n", s.ToAccountID)
	}
	fmt.Printf("  Started:         %s\n", formatTime(s.StartTime))
	if s.EndTime != nil {
		fmt.Printf("  Ended:           %s\n", formatTime(*s.EndTime))
	}

	if len(s.Extra) > 0 {
		keys := make([]string, 0, len(s.Extra))
		for k := range s.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println()
		for _, k := range keys {
			fmt.Printf("  %-22s %s\n", k+":", color.HiBlackString(s.Extra[k]))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredStatus(status string, statuses swap.StatusTable) string {
	d, ok := statuses[status]
	switch {
	case !ok:
		return color.MagentaString(status)
	case d.Failed:
		return color.RedString(status)
	case d.Terminal:
		return color.GreenString(status)
	default:
		return color.YellowString(status)
	}
}
