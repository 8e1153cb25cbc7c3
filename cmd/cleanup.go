package cmd

import (
	"fmt"
	"time"

	"github.com/gnzdotmx/pequebum/internal/pipeline"
	"github.com/gnzdotmx/pequebum/internal/utils"
	"github.com/spf13/cobra"
)

var (
	outputDir     string
	keepLatest    int
	olderThanDays int
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune renders kept from failed uploads",
	Long:  `Remove renders preserved by keepFailedRenders under <outputDir>/failed, based on age or count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := outputDir
		if dir == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir = cfg.OutputDir
		}

		if keepLatest <= 0 && olderThanDays <= 0 {
			return fmt.Errorf("one of --keep-latest or --older-than is required")
		}

		maxAge := time.Duration(olderThanDays) * 24 * time.Hour
		toDelete, err := pipeline.PrunePreserved(dir, keepLatest, maxAge, time.Now(), cleanupDryRun)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}

		if len(toDelete) == 0 {
			utils.LogInfo("No preserved renders to delete.")
			return nil
		}

		for _, d := range toDelete {
			utils.LogInfo("- %s", d)
		}
		if cleanupDryRun {
			utils.LogInfo("Dry run - %d directories would be deleted.", len(toDelete))
			return nil
		}

		utils.LogSuccess("Cleanup completed, %d directories deleted.", len(toDelete))
		return nil
	},
}

func init() {
	cleanupCmd.Flags().StringVarP(&outputDir, "dir", "d", "", "Output directory holding failed/ (default from config)")
	cleanupCmd.Flags().IntVarP(&keepLatest, "keep-latest", "k", 0, "Keep this many latest preserved renders")
	cleanupCmd.Flags().IntVarP(&olderThanDays, "older-than", "o", 0, "Delete preserved renders older than this many days")
	cleanupCmd.Flags().BoolVarP(&cleanupDryRun, "dry-run", "n", false, "Show what would be deleted without actually deleting")

	rootCmd.AddCommand(cleanupCmd)
}
