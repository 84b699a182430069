// Package main: history subcommands for the local verdict store.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"verilens/internal/types"
)

// historyCmd manages the local verification history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the local verification history",
	Long: `List or clear past verification results. History is local to this
machine and capped at the configured maximum (50 by default).`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past verification results, most recent first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the full report for one history entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var clearYes bool

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	RunE:  runHistoryClear,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	entries, err := history.List()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No verification history yet.")
		return nil
	}

	fmt.Println(renderHistoryHeader(len(entries)))
	for _, e := range entries {
		fmt.Println(renderHistoryLine(&e))
	}
	fmt.Println("\nUse: verilens history show <id>")
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	entries, err := history.List()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	for i := range entries {
		if entries[i].ID == args[0] {
			fmt.Println(renderReport(&entries[i]))
			return nil
		}
	}
	return fmt.Errorf("no history entry with id %q", args[0])
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	entries, err := history.List()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("History is already empty.")
		return nil
	}

	if !clearYes && !confirm(fmt.Sprintf("Delete all %d history entries?", len(entries))) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Println("✅ History cleared.")
	return nil
}

// confirm asks a yes/no question on the terminal; anything but an
// explicit yes declines.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// shortTimestamp renders a history entry's creation instant.
func shortTimestamp(r *types.VerificationResult) string {
	return time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04")
}

func init() {
	historyClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)
}
