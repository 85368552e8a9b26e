package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the statuses a swap goes through",
	Long: `List every status of a composite swap with its step, label and whether
it ends the swap.`,
	Args: cobra.NoArgs,
	Run:  runStatuses,
}

func init() {
	rootCmd.AddCommand(statusesCmd)
}

type statusRow struct {
	Status   string `json:"status"`
	Step     int    `json:"step"`
	Label    string `json:"label"`
	Filter   string `json:"filter,omitempty"`
	Terminal bool   `json:"terminal"`
	Failed   bool   `json:"failed"`
}

func runStatuses(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp()
	defer a.close()

	statuses := a.provider.Statuses()
	rows := make([]statusRow, 0, len(statuses))
	for _, key := range statuses.Keys() {
		d := statuses[key]
		rows = append(rows, statusRow{
			Status:   key,
			Step:     d.Step,
			Label:    d.Label,
			Filter:   d.FilterStatus,
			Terminal: d.Terminal,
			Failed:   d.Failed,
		})
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                               SWAP STATUSES")
	fmt.Println(strings.Repeat("=", 90))
	fmt.Printf("\n  %-36s %-6s %-30s %s\n", "STATUS", "STEP", "LABEL", "")
	for _, r := range rows {
		var flag string
		switch {
		case r.Failed:
			flag = color.RedString("terminal, failed")
		case r.Terminal:
			flag = color.GreenString("terminal")
		}
		fmt.Printf("  %-36s %d/%-4d %-30s %s\n", r.Status, r.Step+1, a.provider.TotalSteps(), r.Label, flag)
	}

	fmt.Printf("\n  Transactions: %s on the source chain, %s on the destination chain\n",
		color.YellowString(string(a.provider.FromTxType())), color.YellowString(string(a.provider.ToTxType())))
	fmt.Println("\n" + strings.Repeat("=", 90) + "\n")
}
