package validator

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/gnzdotmx/pequebum/internal/config"
	"github.com/gnzdotmx/pequebum/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain restores the swapped process helpers
func TestMain(m *testing.M) {
	result := m.Run()
	execCommand = exec.Command
	utils.ExecLookPath = exec.LookPath
	os.Exit(result)
}

func fakeExecCommand(command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is not a real test, it's used to mock exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	_, _ = os.Stdout.WriteString(filepath.Base(args[0]) + " version 6.1.1 Copyright (c) 2000-2023\n")
	os.Exit(0)
}

func TestValidateExternalTools(t *testing.T) {
	execCommand = fakeExecCommand
	utils.ExecLookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	t.Cleanup(func() {
		execCommand = exec.Command
		utils.ExecLookPath = exec.LookPath
	})

	assert.NoError(t, ValidateExternalTools())
}

func TestValidateExternalTools_Missing(t *testing.T) {
	utils.ExecLookPath = func(file string) (string, error) {
		if file == "ffprobe" {
			return "", errors.New("executable file not found in $PATH")
		}
		return "/usr/bin/" + file, nil
	}
	execCommand = fakeExecCommand
	t.Cleanup(func() {
		execCommand = exec.Command
		utils.ExecLookPath = exec.LookPath
	})

	err := ValidateExternalTools()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffprobe")
}

func TestValidateEnvVars(t *testing.T) {
	t.Setenv("GEMINI_KEY", "key")
	t.Setenv("YOUTUBE_TOKEN", "")

	err := ValidateEnvVars()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YOUTUBE_TOKEN")
	assert.NotContains(t, err.Error(), "GEMINI_KEY")

	t.Setenv("YOUTUBE_TOKEN", "{}")
	assert.NoError(t, ValidateEnvVars())
}

func TestValidateYouTubeToken(t *testing.T) {
	t.Setenv("YOUTUBE_TOKEN", `{"token":"ya29.abc"}`)
	assert.NoError(t, ValidateYouTubeToken(context.Background()))

	t.Setenv("YOUTUBE_TOKEN", `{"token":`)
	assert.Error(t, ValidateYouTubeToken(context.Background()))
}

func TestValidateAssets(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, ValidateAssets(cfg), "color variant needs no assets")

	cfg.Variant = config.VariantAssets
	cfg.VideoDir = t.TempDir()
	cfg.AudioDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.VideoDir, "clip.mp4"), []byte("x"), 0644))

	var vErr *utils.ValidationError
	require.ErrorAs(t, ValidateAssets(cfg), &vErr)
	assert.Equal(t, "audioDir", vErr.Field)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.AudioDir, "song.mp3"), []byte("x"), 0644))
	assert.NoError(t, ValidateAssets(cfg))
}
