package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnzdotmx/pequebum/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")

	path := filepath.Join(t.TempDir(), "pequebum.yaml")
	content := `variant: assets
outputDir: /tmp/out
videoDir: clips
audioDir: songs
gemini:
  timeout: 45s
upload:
  chunkSize: 1048576
  timeout: 2m
keepFailedRenders: true
seed: 42
archive:
  bucket: renders-bucket
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, VariantAssets, cfg.Variant)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "clips", cfg.VideoDir)
	assert.Equal(t, "songs", cfg.AudioDir)
	assert.Equal(t, 45*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 1048576, cfg.Upload.ChunkSize)
	assert.Equal(t, 2*time.Minute, cfg.Upload.Timeout)
	assert.True(t, cfg.KeepFailedRenders)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.Archive.Enabled())
	assert.Equal(t, "renders", cfg.Archive.Prefix)
}

func TestLoad_ModelFromEnv(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")

	path := filepath.Join(t.TempDir(), "pequebum.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variant: color\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variant: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "unknown variant", mutate: func(c *Config) { c.Variant = "slideshow" }, wantField: "variant"},
		{name: "empty output", mutate: func(c *Config) { c.OutputDir = "" }, wantField: "outputDir"},
		{name: "assets without video dir", mutate: func(c *Config) {
			c.Variant = VariantAssets
			c.VideoDir = ""
		}, wantField: "videoDir"},
		{name: "assets without audio dir", mutate: func(c *Config) {
			c.Variant = VariantAssets
			c.AudioDir = ""
		}, wantField: "audioDir"},
		{name: "font with wrong extension", mutate: func(c *Config) { c.FontFile = "font.woff" }, wantField: "fontFile"},
		{name: "zero gemini timeout", mutate: func(c *Config) { c.Gemini.Timeout = 0 }, wantField: "gemini.timeout"},
		{name: "zero upload timeout", mutate: func(c *Config) { c.Upload.Timeout = 0 }, wantField: "upload.timeout"},
		{name: "negative chunk size", mutate: func(c *Config) { c.Upload.ChunkSize = -1 }, wantField: "upload.chunkSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *utils.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}
