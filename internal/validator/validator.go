package validator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gnzdotmx/pequebum/internal/assets"
	"github.com/gnzdotmx/pequebum/internal/config"
	"github.com/gnzdotmx/pequebum/internal/services/youtube"
	"github.com/gnzdotmx/pequebum/internal/utils"
)

// execCommand allows us to mock exec.Command in tests
var execCommand = exec.Command

// ExternalTool represents an external command-line tool requirement
type ExternalTool struct {
	Name        string
	VersionArgs []string
	Validate    func(output string) bool
}

// requiredTools is a list of external tools that must be installed
var requiredTools = []ExternalTool{
	{
		Name:        "ffmpeg",
		VersionArgs: []string{"-version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "ffmpeg version")
		},
	},
	{
		Name:        "ffprobe",
		VersionArgs: []string{"-version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "ffprobe version")
		},
	},
}

// requiredEnvVars lists required environment variables
var requiredEnvVars = []string{
	"GEMINI_KEY",
	"YOUTUBE_TOKEN",
}

// ValidateExternalTools checks if all required external tools are installed
func ValidateExternalTools() error {
	for _, tool := range requiredTools {
		path, err := utils.ExecLookPath(tool.Name)
		if err != nil {
			return fmt.Errorf("tool %s not found in PATH: %w", tool.Name, err)
		}

		cmd := execCommand(path, tool.VersionArgs...)
		output, err := cmd.Output()
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", tool.Name, err)
		}

		if !tool.Validate(string(output)) {
			return fmt.Errorf("invalid version of %s detected", tool.Name)
		}

		utils.LogVerbose("✓ %s found at %s", tool.Name, path)
	}

	return nil
}

// ValidateEnvVars checks if all required environment variables are set
func ValidateEnvVars() error {
	var missing []string
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
			continue
		}
		// Don't print the actual value for security
		utils.LogVerbose("✓ %s is set", envVar)
	}

	if len(missing) > 0 {
		return fmt.Errorf("environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateYouTubeToken checks that YOUTUBE_TOKEN parses into a usable token
// source. No request is made.
func ValidateYouTubeToken(ctx context.Context) error {
	if _, err := youtube.TokenSource(ctx, []byte(os.Getenv("YOUTUBE_TOKEN"))); err != nil {
		return fmt.Errorf("YOUTUBE_TOKEN: %w", err)
	}
	utils.LogVerbose("✓ YOUTUBE_TOKEN is well formed")
	return nil
}

// ValidateAssets checks that the assets variant has something to pick from
func ValidateAssets(cfg *config.Config) error {
	if cfg.Variant != config.VariantAssets {
		return nil
	}

	for _, dir := range []struct{ field, path string }{
		{"videoDir", cfg.VideoDir},
		{"audioDir", cfg.AudioDir},
	} {
		if err := utils.ValidateDirectory(dir.field, dir.path); err != nil {
			return err
		}
		files, err := assets.List(dir.path)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return &utils.ValidationError{Field: dir.field, Message: fmt.Sprintf("no visible files in %s", dir.path)}
		}
		utils.LogVerbose("✓ %s has %d file(s)", dir.field, len(files))
	}
	return nil
}
