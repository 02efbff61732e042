package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docpilot/internal/connectors/filesystem"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Keep documents in step with a folder",
	Long: `Upload every supported file in a folder, then watch it: new files are
uploaded, changed files are re-indexed and removed files are deleted.

Files are matched to documents by filename. Hidden files and directories are
ignored. Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	conn := filesystem.New(dir, supportedFile)
	if err := conn.Validate(); err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck // closing on exit

	syncer := filesystem.NewSyncer(conn, copilotService)
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	err := syncer.Run(cmd.Context())

	stats := syncer.Stats()
	cmd.Printf("Added %d, updated %d, removed %d, failed %d\n",
		stats.Added, stats.Updated, stats.Removed, stats.Failed)

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}
