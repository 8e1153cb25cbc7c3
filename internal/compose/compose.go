// Package compose renders the narration over a background into an MP4 with ffmpeg.
package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gnzdotmx/pequebum/internal/assets"
	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/script"
	"github.com/gnzdotmx/pequebum/internal/utils"
	"golang.org/x/image/font/gofont/gobold"
)

// execCommand allows us to mock exec.CommandContext in tests
var execCommand = exec.CommandContext

const (
	// OutputName is the file produced in the output directory
	OutputName = "video_final.mp4"
	// FrameRate of every render
	FrameRate = 24

	// ColorDuration is the length in seconds of a flat color render
	ColorDuration = 8.0
	colorWidth    = 1280
	colorHeight   = 720
	colorSafeW    = 1100
	colorFontSize = 60

	clipHeight      = 720
	clipSafeRatio   = 0.8
	clipFontSize    = 52
	clipBorderWidth = 3
	clipTextStart   = 0.5
	musicVolume     = 0.2
)

// Color is an RGB background color
type Color struct {
	R, G, B uint8
}

// Hex formats c the way ffmpeg's color source expects
func (c Color) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B)
}

// Palette holds the flat background colors
var Palette = []Color{
	{255, 100, 100},
	{100, 255, 100},
	{100, 100, 255},
	{255, 200, 50},
	{200, 50, 255},
}

// PickColor draws a palette color from rng
func PickColor(rng *rand.Rand) Color {
	return Palette[rng.Intn(len(Palette))]
}

// Background is either a ColorBackground or an AssetBackground
type Background interface {
	isBackground()
}

// ColorBackground renders on a synthesized flat color with no audio
type ColorBackground struct {
	Color Color
}

// AssetBackground renders on a clip with a music track under it
type AssetBackground struct {
	Assets assets.Set
}

func (ColorBackground) isBackground() {}
func (AssetBackground) isBackground() {}

// Composition is every decision about a render, made before ffmpeg runs
type Composition struct {
	Background   Background
	Duration     float64
	OverlayLines []string
	AudioTrack   string
	Width        int
	Height       int
	SafeWidth    int
	FontSize     int
	BorderWidth  int
	TextStart    float64
	AudioVolume  float64
}

// Composer plans and renders videos into one output directory
type Composer struct {
	outputDir string
	fontFile  string
	typeface  *typeface
}

// New loads the caption font. An empty fontFile selects the bundled Go Bold.
func New(outputDir, fontFile string) (*Composer, error) {
	tf, err := loadTypeface(fontFile)
	if err != nil {
		return nil, failure.Wrap(failure.KindComposition, err, "cannot load caption font")
	}
	return &Composer{outputDir: outputDir, fontFile: fontFile, typeface: tf}, nil
}

// OutputPath is where a successful render ends up
func (c *Composer) OutputPath() string {
	return filepath.Join(c.outputDir, OutputName)
}

// Compose renders s over bg and returns the path of the finished file. Either
// the complete file is at OutputPath or an error is returned and nothing is
// left behind.
func (c *Composer) Compose(ctx context.Context, s script.Script, bg Background) (string, error) {
	plan, err := c.Plan(ctx, s, bg)
	if err != nil {
		return "", err
	}
	return c.Render(ctx, plan)
}

// Plan decides duration, frame size, caption lines and audio for a render
func (c *Composer) Plan(ctx context.Context, s script.Script, bg Background) (Composition, error) {
	if strings.TrimSpace(s.Text) == "" {
		return Composition{}, failure.New(failure.KindComposition, "empty narration")
	}

	var plan Composition
	switch b := bg.(type) {
	case ColorBackground:
		plan = Composition{
			Background: b,
			Duration:   ColorDuration,
			Width:      colorWidth,
			Height:     colorHeight,
			SafeWidth:  colorSafeW,
			FontSize:   colorFontSize,
		}
	case AssetBackground:
		for _, p := range []string{b.Assets.VideoPath, b.Assets.AudioPath} {
			if _, err := os.Stat(p); err != nil {
				return Composition{}, failure.Wrap(failure.KindComposition, err, "asset not readable")
			}
		}
		info, err := probe(ctx, b.Assets.VideoPath)
		if err != nil {
			return Composition{}, failure.Wrap(failure.KindComposition, err, "cannot probe %s", filepath.Base(b.Assets.VideoPath))
		}
		width := scaledWidth(info.Width, info.Height, clipHeight)
		plan = Composition{
			Background:  b,
			Duration:    info.Duration,
			AudioTrack:  b.Assets.AudioPath,
			Width:       width,
			Height:      clipHeight,
			SafeWidth:   int(float64(width) * clipSafeRatio),
			FontSize:    clipFontSize,
			BorderWidth: clipBorderWidth,
			TextStart:   clipTextStart,
			AudioVolume: musicVolume,
		}
	default:
		return Composition{}, failure.New(failure.KindComposition, fmt.Sprintf("unsupported background %T", bg))
	}

	size, err := c.typeface.fit(s.Text, plan.FontSize, plan.SafeWidth)
	if err != nil {
		return Composition{}, failure.Wrap(failure.KindComposition, err, "cannot lay out caption")
	}
	plan.FontSize = size

	lines, err := c.typeface.wrap(s.Text, plan.FontSize, plan.SafeWidth)
	if err != nil {
		return Composition{}, failure.Wrap(failure.KindComposition, err, "cannot lay out caption")
	}
	plan.OverlayLines = lines

	utils.LogVerbose("Composition: %dx%d, %.3fs, %d caption line(s)", plan.Width, plan.Height, plan.Duration, len(lines))
	return plan, nil
}

// Render runs ffmpeg for plan. The file is written under a temporary name and
// renamed into place only once ffmpeg succeeded.
func (c *Composer) Render(ctx context.Context, plan Composition) (string, error) {
	if err := utils.ValidateOutputPath(c.outputDir); err != nil {
		return "", failure.Wrap(failure.KindComposition, err, "output directory unusable")
	}

	work, err := os.MkdirTemp("", "pequebum-render-*")
	if err != nil {
		return "", failure.Wrap(failure.KindComposition, err, "cannot create work directory")
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			utils.LogWarning("Failed to remove work directory: %v", err)
		}
	}()

	files, err := c.prepare(work, plan)
	if err != nil {
		return "", failure.Wrap(failure.KindComposition, err, "cannot prepare render inputs")
	}

	tmp, err := os.CreateTemp(c.outputDir, ".video_final-*.mp4")
	if err != nil {
		return "", failure.Wrap(failure.KindComposition, err, "cannot create temporary output")
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", failure.Wrap(failure.KindComposition, err, "cannot create temporary output")
	}

	if err := c.run(ctx, buildArgs(plan, files, tmpPath)); err != nil {
		removePartial(tmpPath)
		return "", failure.Wrap(failure.KindComposition, err, "render failed")
	}

	if info, err := os.Stat(tmpPath); err != nil || info.Size() == 0 {
		removePartial(tmpPath)
		return "", failure.New(failure.KindComposition, "ffmpeg completed but produced no output")
	}

	final := c.OutputPath()
	if err := os.Rename(tmpPath, final); err != nil {
		removePartial(tmpPath)
		return "", failure.Wrap(failure.KindComposition, err, "cannot move render into place")
	}

	utils.LogSuccess("🎞️ Video rendered: %s (%.1fs)", final, plan.Duration)
	return final, nil
}

func (c *Composer) run(ctx context.Context, args []string) error {
	utils.LogDebug("ffmpeg %s", strings.Join(args, " "))

	cmd := execCommand(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			utils.LogDebug("FFmpeg error: %s", stderr.String())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(err, ctxErr)
		}
		return fmt.Errorf("ffmpeg command failed: %w (%s)", err, lastLine(stderr.String()))
	}
	return nil
}

// renderFiles are the on-disk inputs drawtext reads
type renderFiles struct {
	font  string
	lines []string
}

// prepare writes one text file per caption line so no escaping of the
// narration is needed, plus the bundled font when none is configured.
func (c *Composer) prepare(work string, plan Composition) (renderFiles, error) {
	files := renderFiles{font: c.fontFile}
	if files.font == "" {
		files.font = filepath.Join(work, "gobold.ttf")
		if err := os.WriteFile(files.font, gobold.TTF, 0644); err != nil {
			return renderFiles{}, err
		}
	}

	for i, line := range plan.OverlayLines {
		path := filepath.Join(work, fmt.Sprintf("line-%d.txt", i))
		if err := os.WriteFile(path, []byte(line), 0644); err != nil {
			return renderFiles{}, err
		}
		files.lines = append(files.lines, path)
	}
	return files, nil
}

func buildArgs(plan Composition, files renderFiles, output string) []string {
	duration := seconds(plan.Duration)
	args := []string{"-y", "-v", "error"}

	var video string
	switch b := plan.Background.(type) {
	case ColorBackground:
		args = append(args, "-f", "lavfi", "-i",
			fmt.Sprintf("color=c=%s:s=%dx%d:d=%s:r=%d", b.Color.Hex(), plan.Width, plan.Height, duration, FrameRate))
		video = "[0:v]"
	case AssetBackground:
		args = append(args, "-i", b.Assets.VideoPath)
		video = fmt.Sprintf("[0:v]scale=-2:%d,", plan.Height)
	}
	if plan.AudioTrack != "" {
		args = append(args, "-i", plan.AudioTrack)
	}

	filters := []string{video + strings.Join(append(drawtexts(plan, files), "format=yuv420p"), ",") + "[v]"}
	if plan.AudioTrack != "" {
		filters = append(filters, fmt.Sprintf("[1:a]volume=%s,apad,atrim=0:%s[a]",
			strconv.FormatFloat(plan.AudioVolume, 'f', -1, 64), duration))
	}
	args = append(args, "-filter_complex", strings.Join(filters, ";"), "-map", "[v]")
	if plan.AudioTrack != "" {
		args = append(args, "-map", "[a]")
	}

	args = append(args,
		"-t", duration,
		"-r", strconv.Itoa(FrameRate),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
	)
	if plan.AudioTrack != "" {
		args = append(args, "-c:a", "aac", "-b:a", "128k")
	}
	return append(args, "-movflags", "+faststart", "-f", "mp4", output)
}

// drawtexts stacks one drawtext per caption line, centered as a block
func drawtexts(plan Composition, files renderFiles) []string {
	lineHeight := plan.FontSize * 5 / 4
	block := lineHeight * len(files.lines)

	out := make([]string, 0, len(files.lines))
	for i, path := range files.lines {
		f := fmt.Sprintf("drawtext=fontfile=%s:textfile=%s:expansion=none:fontcolor=white:fontsize=%d:x=(w-text_w)/2:y=(h-%d)/2+%d",
			quote(files.font), quote(path), plan.FontSize, block, i*lineHeight)
		if plan.BorderWidth > 0 {
			f += fmt.Sprintf(":borderw=%d:bordercolor=black", plan.BorderWidth)
		}
		if plan.TextStart > 0 {
			f += fmt.Sprintf(":enable='gte(t,%s)'", strconv.FormatFloat(plan.TextStart, 'f', -1, 64))
		}
		out = append(out, f)
	}
	return out
}

func seconds(d float64) string {
	return strconv.FormatFloat(d, 'f', 3, 64)
}

// quote protects a path inside a filtergraph option value
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func removePartial(path string) {
	if err := utils.RemoveIfExists(path); err != nil {
		utils.LogWarning("Failed to remove partial render %s: %v", path, err)
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
