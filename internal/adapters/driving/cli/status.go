package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show sync status for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var logsCmd = &cobra.Command{
	Use:   "logs <user-id>",
	Short: "Show recent sync runs for a user",
	Long:  `Lists sync logs for a user, most recent first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().IntP("limit", "n", 10, "maximum number of runs to show")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return notConfigured("sync")
	}

	status, err := syncService.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("User:           %s\n", status.UserID)
	if status.Running {
		cmd.Printf("State:          running (%s)\n", status.SyncType)
		cmd.Printf("Processed:      %d documents, %d errors\n", status.DocumentsProcessed, status.ErrorCount)
	} else {
		cmd.Println("State:          idle")
	}
	if status.LastSyncTime.IsZero() {
		cmd.Println("Last sync:      never")
	} else {
		cmd.Printf("Last sync:      %s\n", formatTime(status.LastSyncTime))
	}
	return nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return notConfigured("sync")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	logs, err := syncService.History(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		cmd.Println("No sync runs recorded.")
		return nil
	}
	for _, log := range logs {
		printSyncLog(cmd, log)
	}
	return nil
}

func printSyncLog(cmd *cobra.Command, log domain.SyncLog) {
	cmd.Printf("%s  %-11s %-9s %s  %d changes",
		log.ID, log.SyncType, log.Status, formatTime(log.StartTime), log.ChangesProcessed)
	if !log.EndTime.IsZero() {
		cmd.Printf(" in %s", log.EndTime.Sub(log.StartTime).Round(time.Millisecond))
	}
	cmd.Println()
	for _, e := range log.Errors {
		cmd.Printf("    error: %s\n", e)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
