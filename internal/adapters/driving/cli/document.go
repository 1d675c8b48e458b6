package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

var selectCmd = &cobra.Command{
	Use:   "select <user-id> <file-id>",
	Short: "Mark a document as selected for retrieval",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetSelected(cmd, args[0], args[1], true)
	},
}

var deselectCmd = &cobra.Command{
	Use:   "deselect <user-id> <file-id>",
	Short: "Clear a document's selection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetSelected(cmd, args[0], args[1], false)
	},
}

var selectedCmd = &cobra.Command{
	Use:   "selected <user-id>",
	Short: "List a user's selected documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelected,
}

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect and manage indexed documents",
}

var documentShowCmd = &cobra.Command{
	Use:   "show <user-id> <file-id>",
	Short: "Show the indexed metadata of a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentShow,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove <user-id> <file-id>",
	Short: "Remove a document's chunks from the index",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentRemove,
}

var eventCmd = &cobra.Command{
	Use:   "event <user-id> <file-id> <open|close|change>",
	Short: "Report a file event from a client",
	Long: `Reports that a user opened, closed or changed a file.
Every event re-synchronises that one file.`,
	Args: cobra.ExactArgs(3),
	RunE: runEvent,
}

func init() {
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(deselectCmd)
	rootCmd.AddCommand(selectedCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(eventCmd)
}

func runSetSelected(cmd *cobra.Command, userID, fileID string, selected bool) error {
	if selectionService == nil {
		return notConfigured("selection")
	}

	result := selectionService.SetSelected(cmd.Context(), userID, fileID, selected)
	if err := result.Error(); err != nil {
		return err
	}

	verb := "selected"
	if !selected {
		verb = "deselected"
	}
	cmd.Printf("Document %s %s (%d chunks).\n", fileID, verb, result.VectorsUpserted)
	return nil
}

func runSelected(cmd *cobra.Command, args []string) error {
	if selectionService == nil {
		return notConfigured("selection")
	}

	docs, err := selectionService.GetSelectedDocuments(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents selected.")
		return nil
	}

	cmd.Printf("%d selected documents:\n", len(docs))
	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  %s  %s  (modified %s)\n", doc.ID, title, formatTime(doc.ModifiedAt))
	}
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if selectionService == nil {
		return notConfigured("selection")
	}

	md, found, err := selectionService.GetChunkMetadata(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: document %s is not indexed", domain.ErrNotFound, args[1])
	}

	cmd.Printf("ID:        %s\n", md.BaseDocumentID)
	cmd.Printf("Title:     %s\n", md.Title)
	cmd.Printf("Chunks:    %d\n", md.TotalChunks)
	cmd.Printf("Selected:  %t\n", md.IsSelected)
	cmd.Printf("Modified:  %s\n", formatTime(md.LastModified))
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if selectionService == nil {
		return notConfigured("selection")
	}

	if err := selectionService.Remove(cmd.Context(), args[0], args[1]).Error(); err != nil {
		return err
	}
	cmd.Printf("Document %s removed from the index.\n", args[1])
	return nil
}

func runEvent(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return notConfigured("sync")
	}

	event, err := domain.ParseFileEvent(args[2])
	if err != nil {
		return err
	}

	result := syncService.HandleFileEvent(cmd.Context(), args[0], args[1], event)
	if err := result.Error(); err != nil {
		return err
	}
	cmd.Printf("Handled %s event for %s (%d vectors).\n", event, args[1], result.VectorsUpserted)
	return nil
}
