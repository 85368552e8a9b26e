package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"boost-swap/pkg/swap"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [swap-id]",
	Short: "Drive saved swaps to completion",
	Long: `Continue a saved swap from its last recorded status. Without an id every
pending swap is driven concurrently.

Examples:
  boost-swap resume
  boost-swap resume 6f1c...`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp()
	defer a.close()

	if len(args) == 1 {
		s, err := a.store.Get(args[0])
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		final, err := driveSwap(cmd.Context(), a, s, jsonOutput)
		reportRun(final, err, a.provider.Statuses())
		return
	}

	statuses := a.provider.Statuses()
	pending := a.store.ListPending(statuses)
	if len(pending) == 0 {
		fmt.Println("\nNo pending swaps.")
		return
	}
	fmt.Printf("\nResuming %d pending swap(s). Press Ctrl+C to stop.\n\n", len(pending))

	observer := func(s *swap.Swap, n *swap.Notification) {
		if jsonOutput {
			return
		}
		fmt.Printf("  %s  %s\n", color.CyanString(shortID(s.ID)), progress(s, statuses, a.provider.TotalSteps()))
		if n != nil {
			fmt.Printf("  %s  %s\n", color.CyanString(shortID(s.ID)), n.Message)
		}
	}

	err := a.runner(observer).RunAll(cmd.Context())
	switch {
	case errors.Is(err, context.Canceled):
		color.Yellow("\nStopped. Pending swaps are saved.")
	case err != nil:
		printError(err)
		os.Exit(1)
	default:
		printSuccess(color.GreenString("✓ All pending swaps finished"))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
