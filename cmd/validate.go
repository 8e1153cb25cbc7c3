package cmd

import (
	"fmt"

	"github.com/gnzdotmx/pequebum/internal/utils"
	"github.com/gnzdotmx/pequebum/internal/validator"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment setup",
	Long:  `Check that ffmpeg and ffprobe are installed, credentials are set, and the configured asset directories are usable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.LogInfo("Validating environment...")

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		utils.LogSuccess("Configuration: OK (variant %s)", cfg.Variant)

		if err := validator.ValidateExternalTools(); err != nil {
			return fmt.Errorf("external tools validation failed: %w", err)
		}
		utils.LogSuccess("External tools: OK")

		if err := validator.ValidateEnvVars(); err != nil {
			return fmt.Errorf("environment variables validation failed: %w", err)
		}
		if err := validator.ValidateYouTubeToken(cmd.Context()); err != nil {
			return fmt.Errorf("environment variables validation failed: %w", err)
		}
		utils.LogSuccess("Environment variables: OK")

		if err := validator.ValidateAssets(cfg); err != nil {
			return fmt.Errorf("asset validation failed: %w", err)
		}
		utils.LogSuccess("Assets: OK")

		utils.LogSuccess("Environment validation completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
