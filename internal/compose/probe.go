package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// clipInfo is what the composer needs to know about a background clip
type clipInfo struct {
	Duration float64
	Width    int
	Height   int
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probe reads the native duration and frame size of the first video stream
func probe(ctx context.Context, path string) (clipInfo, error) {
	cmd := execCommand(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return clipInfo{}, fmt.Errorf("ffprobe failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return clipInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(parsed.Streams) == 0 {
		return clipInfo{}, fmt.Errorf("no video stream in %s", path)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil || duration <= 0 {
		return clipInfo{}, fmt.Errorf("invalid duration %q in %s", parsed.Format.Duration, path)
	}

	s := parsed.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return clipInfo{}, fmt.Errorf("invalid frame size %dx%d in %s", s.Width, s.Height, path)
	}

	return clipInfo{Duration: duration, Width: s.Width, Height: s.Height}, nil
}

// scaledWidth mirrors ffmpeg's scale=-2:<height>, which keeps the aspect
// ratio and rounds the width to an even number.
func scaledWidth(w, h, targetHeight int) int {
	scaled := int(float64(w)*float64(targetHeight)/float64(h)/2+0.5) * 2
	if scaled < 2 {
		return 2
	}
	return scaled
}
