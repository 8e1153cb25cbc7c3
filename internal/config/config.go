// Package config loads the pipeline settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gnzdotmx/pequebum/internal/utils"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given and the file exists
const DefaultFile = "pequebum.yaml"

// Variant selects how the background of the video is produced
type Variant string

const (
	// VariantColor renders on a flat palette color with no audio
	VariantColor Variant = "color"
	// VariantAssets renders on a random clip with background music
	VariantAssets Variant = "assets"
)

// Config holds every tunable of a pipeline run
type Config struct {
	Variant   Variant `yaml:"variant"`
	OutputDir string  `yaml:"outputDir"`
	VideoDir  string  `yaml:"videoDir"`
	AudioDir  string  `yaml:"audioDir"`
	FontFile  string  `yaml:"fontFile"`
	Title     string  `yaml:"title"`

	Gemini  GeminiConfig  `yaml:"gemini"`
	Upload  UploadConfig  `yaml:"upload"`
	Archive ArchiveConfig `yaml:"archive"`

	// KeepFailedRenders moves a render whose publish failed to <outputDir>/failed
	// instead of deleting it.
	KeepFailedRenders bool   `yaml:"keepFailedRenders"`
	StateFile         string `yaml:"stateFile"`
	// Seed pins the random source. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// GeminiConfig configures the text model
type GeminiConfig struct {
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// UploadConfig configures the YouTube upload
type UploadConfig struct {
	ChunkSize         int           `yaml:"chunkSize"`
	Timeout           time.Duration `yaml:"timeout"`
	NotifySubscribers bool          `yaml:"notifySubscribers"`
}

// ArchiveConfig enables copying renders to S3 before they are deleted locally
type ArchiveConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// Enabled reports whether a bucket was configured
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Variant:   VariantColor,
		OutputDir: ".",
		VideoDir:  "assets/videos",
		AudioDir:  "assets/music",
		Title:     "¿Sabías que...? 🧐 | PequeBum Kids",
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			Timeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			ChunkSize:         8 * 1024 * 1024,
			Timeout:           10 * time.Minute,
			NotifySubscribers: true,
		},
		Archive: ArchiveConfig{
			Prefix: "renders",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.Gemini.Model = model
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			utils.LogVerbose("Config file %s not found, using defaults", path)
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the values that would otherwise fail deep inside a stage
func (c *Config) Validate() error {
	switch c.Variant {
	case VariantColor, VariantAssets:
	default:
		return &utils.ValidationError{
			Field:   "variant",
			Message: fmt.Sprintf("unknown variant %q (expected %q or %q)", c.Variant, VariantColor, VariantAssets),
		}
	}

	if c.OutputDir == "" {
		return &utils.ValidationError{Field: "outputDir", Message: "output directory is required"}
	}

	if c.Variant == VariantAssets {
		if c.VideoDir == "" {
			return &utils.ValidationError{Field: "videoDir", Message: "video directory is required for the assets variant"}
		}
		if c.AudioDir == "" {
			return &utils.ValidationError{Field: "audioDir", Message: "audio directory is required for the assets variant"}
		}
	}

	if c.FontFile != "" {
		if err := utils.ValidateFileExtension(c.FontFile, []string{".ttf", ".otf"}); err != nil {
			return &utils.ValidationError{Field: "fontFile", Message: "font must be a TrueType or OpenType file", Err: err}
		}
	}

	if c.Title == "" {
		return &utils.ValidationError{Field: "title", Message: "title is required"}
	}
	if c.Gemini.Model == "" {
		return &utils.ValidationError{Field: "gemini.model", Message: "model name is required"}
	}
	if c.Gemini.Timeout <= 0 {
		return &utils.ValidationError{Field: "gemini.timeout", Message: "timeout must be positive"}
	}
	if c.Upload.Timeout <= 0 {
		return &utils.ValidationError{Field: "upload.timeout", Message: "timeout must be positive"}
	}
	if c.Upload.ChunkSize < 0 {
		return &utils.ValidationError{Field: "upload.chunkSize", Message: "chunk size cannot be negative"}
	}

	return nil
}
