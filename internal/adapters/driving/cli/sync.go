package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
)

var syncCmd = &cobra.Command{
	Use:   "sync [user-id]",
	Short: "Synchronise a user's drive into the vector index",
	Long: `Triggers synchronisation of Google Drive into the vector index.
If a user ID is provided, only that user is synchronised: incrementally
when a previous run left a watermark, otherwise in full.
Otherwise, every configured user is synchronised once.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Bool("full", false, "walk the whole drive instead of fetching changes")
	syncCmd.Flags().String("file", "", "sync a single file by ID")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	full, _ := cmd.Flags().GetBool("full")
	fileID, _ := cmd.Flags().GetString("file")

	if len(args) == 0 {
		if fileID != "" {
			return fmt.Errorf("%w: --file needs a user ID", domain.ErrInvalidInput)
		}
		return runSyncAll(ctx, cmd)
	}

	if syncService == nil {
		return notConfigured("sync")
	}
	userID := args[0]

	if fileID != "" {
		result := syncService.SyncFile(ctx, userID, fileID)
		if err := result.Error(); err != nil {
			return fmt.Errorf("sync file %s: %w", fileID, err)
		}
		cmd.Printf("File %s synchronised (%d vectors).\n", fileID, result.VectorsUpserted)
		return nil
	}

	cmd.Printf("Synchronising %s...\n", userID)
	run := syncService.Sync
	if full {
		run = syncService.FullSync
	}

	log, err := syncWithProgress(ctx, cmd, syncService, userID, run)
	if log != nil {
		printSyncLog(cmd, *log)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if log != nil && log.Status == domain.SyncFailed {
		return fmt.Errorf("sync finished with %d errors", len(log.Errors))
	}
	return nil
}

func runSyncAll(ctx context.Context, cmd *cobra.Command) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}

	cmd.Println("Synchronising all users...")
	results := scheduler.RunOnce(ctx)
	if len(results) == 0 {
		cmd.Println("No users configured.")
		return nil
	}

	failed := 0
	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
			cmd.Printf("  %s: %s\n", r.UserID, r.Error)
		case r.Log != nil:
			if !r.Success() {
				failed++
			}
			cmd.Printf("  %s: %s, %d changes, %d errors\n",
				r.UserID, r.Log.Status, r.Log.ChangesProcessed, len(r.Log.Errors))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d users failed to sync", failed, len(results))
	}
	cmd.Println("All users synchronised successfully.")
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	svc driving.SyncService,
	userID string,
	run func(context.Context, string) (*domain.SyncLog, error),
) (*domain.SyncLog, error) {
	type outcome struct {
		log *domain.SyncLog
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		log, err := run(ctx, userID)
		done <- outcome{log, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-done:
			if lastCount > 0 {
				cmd.Println()
			}
			return out.log, out.err
		case <-ticker.C:
			// Best effort; a status error just skips this tick
			status, err := svc.Status(ctx, userID)
			if err == nil && status != nil && status.DocumentsProcessed > lastCount {
				cmd.Printf("\rProcessing... %d documents", status.DocumentsProcessed)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}
