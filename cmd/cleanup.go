package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joeywang/vidoer/infrastructure/filesystem"
)

var (
	cleanupDir    string
	cleanupMaxAge time.Duration
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stale files from the upload directory",
	Long: `Delete files in the upload directory that are older than the
configured maximum age. The serve command runs the same purge on a schedule;
this command runs it once, for cron jobs or manual housekeeping.

Example:
  vidoer cleanup --max-age 48h`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringVar(&cleanupDir, "dir", "", "Directory to purge (defaults to the configured upload directory)")
	cleanupCmd.Flags().DurationVar(&cleanupMaxAge, "max-age", 0, "Delete files older than this (defaults to the configured maximum age)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; check %s", cfgFile)
	}

	dir := cleanupDir
	if dir == "" {
		dir = cfg.Paths.UploadDirectory
	}
	maxAge := cleanupMaxAge
	if maxAge == 0 {
		maxAge = time.Duration(cfg.Cleanup.MaxAgeHours) * time.Hour
	}

	return RunCleanupWithDependencies(filesystem.NewStore(), dir, maxAge, os.Stdout)
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// Purger is the file store slice the cleanup command needs.
type Purger interface {
	RemoveOlderThan(dir string, maxAge time.Duration) (int, error)
	DirectorySize(dir string) (int64, error)
}

// RunCleanupWithDependencies runs the cleanup command with injected dependencies (for testing)
func RunCleanupWithDependencies(purger Purger, dir string, maxAge time.Duration, output OutputWriter) error {
	deleted, err := purger.RemoveOlderThan(dir, maxAge)
	if err != nil {
		return err
	}

	size, err := purger.DirectorySize(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Deleted %d stale files; %s now holds %s\n",
		deleted, dir, filesystem.FormatSize(size))
	return nil
}
