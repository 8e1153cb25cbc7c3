package compose

import (
	"context"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnzdotmx/pequebum/internal/assets"
	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Save the original exec.CommandContext
var originalExecCommand = execCommand

const fullHDProbe = `{"streams":[{"width":1920,"height":1080}],"format":{"duration":"12.480000"}}`

// Read by the helper process through its environment
var (
	fakeProbeJSON = fullHDProbe
	fakeFFmpegErr = false
)

// TestMain sets up and tears down the mock command
func TestMain(m *testing.M) {
	result := m.Run()
	execCommand = originalExecCommand
	os.Exit(result)
}

// fakeExecCommand re-runs the test binary as ffmpeg or ffprobe
func fakeExecCommand(ctx context.Context, command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "FAKE_PROBE_JSON=" + fakeProbeJSON}
	if fakeFFmpegErr {
		cmd.Env = append(cmd.Env, "FAKE_FFMPEG_FAIL=1")
	}
	return cmd
}

// TestHelperProcess is not a real test, it's used to mock exec.CommandContext
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

	switch args[0] {
	case "ffprobe":
		_, _ = os.Stdout.WriteString(os.Getenv("FAKE_PROBE_JSON"))
		os.Exit(0)
	case "ffmpeg":
		outputPath := args[len(args)-1]
		if err := os.WriteFile(outputPath, []byte("mock video content"), 0644); err != nil {
			os.Exit(2)
		}
		if os.Getenv("FAKE_FFMPEG_FAIL") == "1" {
			_, _ = os.Stderr.WriteString("Error while encoding\n")
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(3)
}

func useFakes(t *testing.T, probeJSON string, ffmpegFails bool) {
	t.Helper()
	execCommand = fakeExecCommand
	fakeProbeJSON = probeJSON
	fakeFFmpegErr = ffmpegFails
	t.Cleanup(func() {
		execCommand = originalExecCommand
		fakeProbeJSON = fullHDProbe
		fakeFFmpegErr = false
	})
}

func assetSet(t *testing.T) assets.Set {
	t.Helper()
	dir := t.TempDir()
	set := assets.Set{
		VideoPath: filepath.Join(dir, "clip.mp4"),
		AudioPath: filepath.Join(dir, "song.mp3"),
	}
	require.NoError(t, os.WriteFile(set.VideoPath, []byte("clip"), 0644))
	require.NoError(t, os.WriteFile(set.AudioPath, []byte("song"), 0644))
	return set
}

var longFact = script.Script{
	Text:   "¡Los pulpos tienen tres corazones y sangre azul que les ayuda a vivir en aguas muy frías del océano profundo!",
	Source: script.SourceGenerated,
}

func TestComposer_PlanColor(t *testing.T) {
	c, err := New(t.TempDir(), "")
	require.NoError(t, err)

	plan, err := c.Plan(context.Background(), longFact, ColorBackground{Color: Palette[0]})
	require.NoError(t, err)

	assert.Equal(t, ColorDuration, plan.Duration)
	assert.Equal(t, 1280, plan.Width)
	assert.Equal(t, 720, plan.Height)
	assert.Equal(t, 1100, plan.SafeWidth)
	assert.Empty(t, plan.AudioTrack)
	assert.Greater(t, len(plan.OverlayLines), 1)
	assert.Equal(t, longFact.Text, strings.Join(plan.OverlayLines, " "))
	for _, line := range plan.OverlayLines {
		w, err := c.typeface.width(line, plan.FontSize)
		require.NoError(t, err)
		assert.LessOrEqual(t, w, plan.SafeWidth, line)
	}
}

func TestComposer_PlanAssets(t *testing.T) {
	useFakes(t, fullHDProbe, false)
	set := assetSet(t)

	c, err := New(t.TempDir(), "")
	require.NoError(t, err)

	plan, err := c.Plan(context.Background(), longFact, AssetBackground{Assets: set})
	require.NoError(t, err)

	assert.Equal(t, 12.48, plan.Duration)
	assert.Equal(t, 1280, plan.Width)
	assert.Equal(t, 720, plan.Height)
	assert.Equal(t, 1024, plan.SafeWidth)
	assert.Equal(t, set.AudioPath, plan.AudioTrack)
	assert.Equal(t, 0.5, plan.TextStart)
	assert.Equal(t, 0.2, plan.AudioVolume)
	assert.Equal(t, 3, plan.BorderWidth)
}

func TestComposer_PlanAssetsPortraitClip(t *testing.T) {
	useFakes(t, `{"streams":[{"width":1080,"height":1920}],"format":{"duration":"9.0"}}`, false)
	set := assetSet(t)

	c, err := New(t.TempDir(), "")
	require.NoError(t, err)

	fact := script.Script{Text: "¡Los dinosaurios herbívoros eran increíblemente enormes!", Source: script.SourceGenerated}
	plan, err := c.Plan(context.Background(), fact, AssetBackground{Assets: set})
	require.NoError(t, err)

	assert.Equal(t, 406, plan.Width)
	assert.Equal(t, 324, plan.SafeWidth)
	assert.Less(t, plan.FontSize, 52)
	assert.Equal(t, fact.Text, strings.Join(plan.OverlayLines, " "))
	for _, line := range plan.OverlayLines {
		w, err := c.typeface.width(line, plan.FontSize)
		require.NoError(t, err)
		assert.LessOrEqual(t, w, plan.SafeWidth, line)
	}
}

func TestComposer_PlanFailures(t *testing.T) {
	tests := []struct {
		name      string
		probeJSON string
		mutate    func(s *assets.Set)
	}{
		{name: "missing clip", probeJSON: fullHDProbe, mutate: func(s *assets.Set) { s.VideoPath += ".gone" }},
		{name: "missing music", probeJSON: fullHDProbe, mutate: func(s *assets.Set) { s.AudioPath += ".gone" }},
		{name: "no video stream", probeJSON: `{"streams":[],"format":{"duration":"3.0"}}`},
		{name: "bad duration", probeJSON: `{"streams":[{"width":640,"height":360}],"format":{"duration":"N/A"}}`},
		{name: "not json", probeJSON: `moov atom not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFakes(t, tt.probeJSON, false)
			set := assetSet(t)
			if tt.mutate != nil {
				tt.mutate(&set)
			}

			c, err := New(t.TempDir(), "")
			require.NoError(t, err)

			_, err = c.Plan(context.Background(), longFact, AssetBackground{Assets: set})
			require.Error(t, err)
			assert.Equal(t, failure.KindComposition, failure.KindOf(err))
		})
	}
}

func TestBuildArgs_Color(t *testing.T) {
	plan := Composition{
		Background:   ColorBackground{Color: Color{255, 200, 50}},
		Duration:     ColorDuration,
		OverlayLines: []string{"¡Hola!"},
		Width:        1280,
		Height:       720,
		FontSize:     60,
	}
	args := buildArgs(plan, renderFiles{font: "/fonts/bold.ttf", lines: []string{"/work/line-0.txt"}}, "/out/tmp.mp4")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "color=c=0xFFC832:s=1280x720:d=8.000:r=24")
	assert.Contains(t, joined, "-t 8.000")
	assert.Contains(t, joined, "-r 24")
	assert.Contains(t, joined, "-c:v libx264 -pix_fmt yuv420p")
	assert.Contains(t, joined, "textfile='/work/line-0.txt'")
	assert.Contains(t, joined, "-movflags +faststart")
	assert.NotContains(t, joined, "-c:a")
	assert.NotContains(t, joined, "enable=")
	assert.Equal(t, "/out/tmp.mp4", args[len(args)-1])
}

func TestBuildArgs_Assets(t *testing.T) {
	plan := Composition{
		Background:   AssetBackground{Assets: assets.Set{VideoPath: "/v/clip.mp4", AudioPath: "/a/song.mp3"}},
		Duration:     12.48,
		OverlayLines: []string{"uno", "dos"},
		AudioTrack:   "/a/song.mp3",
		Width:        1280,
		Height:       720,
		FontSize:     52,
		BorderWidth:  3,
		TextStart:    0.5,
		AudioVolume:  0.2,
	}
	files := renderFiles{font: "/fonts/it's.ttf", lines: []string{"/w/line-0.txt", "/w/line-1.txt"}}
	args := buildArgs(plan, files, "/out/tmp.mp4")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-i /v/clip.mp4 -i /a/song.mp3")
	assert.Contains(t, joined, "[0:v]scale=-2:720,drawtext=")
	assert.Contains(t, joined, "[1:a]volume=0.2,apad,atrim=0:12.480[a]")
	assert.Contains(t, joined, "-map [v] -map [a]")
	assert.Contains(t, joined, "-t 12.480")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "borderw=3:bordercolor=black")
	assert.Contains(t, joined, "enable='gte(t,0.5)'")
	assert.Contains(t, joined, `fontfile='/fonts/it'\''s.ttf'`)
	assert.Equal(t, 2, strings.Count(joined, "drawtext="))
}

func TestComposer_Compose(t *testing.T) {
	useFakes(t, fullHDProbe, false)
	out := t.TempDir()

	c, err := New(out, "")
	require.NoError(t, err)

	path, err := c.Compose(context.Background(), longFact, AssetBackground{Assets: assetSet(t)})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, OutputName), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mock video content", string(data))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the final render should remain")
}

func TestComposer_ComposeRenderFailureLeavesNothing(t *testing.T) {
	useFakes(t, fullHDProbe, true)
	out := t.TempDir()

	c, err := New(out, "")
	require.NoError(t, err)

	path, err := c.Compose(context.Background(), longFact, ColorBackground{Color: Palette[2]})
	require.Error(t, err)
	assert.Empty(t, path)
	assert.Equal(t, failure.KindComposition, failure.KindOf(err))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestComposer_EmptyNarration(t *testing.T) {
	c, err := New(t.TempDir(), "")
	require.NoError(t, err)

	_, err = c.Plan(context.Background(), script.Script{Text: "  "}, ColorBackground{})
	assert.Equal(t, failure.KindComposition, failure.KindOf(err))
}

func TestNew_BadFont(t *testing.T) {
	fontFile := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(fontFile, []byte("not a font"), 0644))

	_, err := New(t.TempDir(), fontFile)
	assert.Equal(t, failure.KindComposition, failure.KindOf(err))
}

func TestTypeface_WrapLongWord(t *testing.T) {
	tf, err := loadTypeface("")
	require.NoError(t, err)

	lines, err := tf.wrap("supercalifragilisticoespialidoso es largo", 60, 200)
	require.NoError(t, err)
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "supercalifragilisticoespialidosoeslargo",
		strings.ReplaceAll(strings.Join(lines, " "), " ", ""))
	for _, line := range lines {
		w, err := tf.width(line, 60)
		require.NoError(t, err)
		assert.LessOrEqual(t, w, 200, line)
	}

	none, err := tf.wrap("   ", 60, 200)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTypeface_Fit(t *testing.T) {
	tf, err := loadTypeface("")
	require.NoError(t, err)

	size, err := tf.fit("hola mundo", 52, 1000)
	require.NoError(t, err)
	assert.Equal(t, 52, size)

	size, err = tf.fit("increíblemente", 52, 324)
	require.NoError(t, err)
	assert.Less(t, size, 52)
	w, err := tf.width("increíblemente", size)
	require.NoError(t, err)
	assert.LessOrEqual(t, w, 324)

	size, err = tf.fit("increíblemente", 52, 10)
	require.NoError(t, err)
	assert.Equal(t, minFontSize, size)
}

func TestScaledWidth(t *testing.T) {
	assert.Equal(t, 1280, scaledWidth(1920, 1080, 720))
	assert.Equal(t, 406, scaledWidth(1080, 1920, 720))
	assert.Equal(t, 960, scaledWidth(640, 480, 720))
}

func TestPickColor(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		assert.Contains(t, Palette, PickColor(rng))
	}
	assert.Equal(t, "0xFF6464", Palette[0].Hex())
}
