// Package assets picks the background clip and music for a run.
package assets

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/utils"
)

// Set is the clip and track chosen for one video
type Set struct {
	VideoPath string `json:"videoPath"`
	AudioPath string `json:"audioPath"`
}

// Picker chooses files uniformly from asset directories
type Picker struct {
	rng *rand.Rand
}

// NewPicker returns a picker drawing from rng
func NewPicker(rng *rand.Rand) *Picker {
	return &Picker{rng: rng}
}

// Pick returns the path of a random visible regular file in dir
func (p *Picker) Pick(dir string) (string, error) {
	candidates, err := List(dir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", failure.New(failure.KindAssetUnavailable, "no assets available in "+dir)
	}

	chosen := candidates[p.rng.Intn(len(candidates))]
	utils.LogVerbose("Picked %s from %d candidate(s)", filepath.Base(chosen), len(candidates))
	return chosen, nil
}

// PickSet picks a clip from videoDir and a track from audioDir
func (p *Picker) PickSet(videoDir, audioDir string) (Set, error) {
	video, err := p.Pick(videoDir)
	if err != nil {
		return Set{}, err
	}
	audio, err := p.Pick(audioDir)
	if err != nil {
		return Set{}, err
	}

	utils.LogInfo("🎬 Clip: %s | 🎵 Music: %s", filepath.Base(video), filepath.Base(audio))
	return Set{VideoPath: video, AudioPath: audio}, nil
}

// List returns the visible regular files of dir in name order. Symlinks are
// followed; entries that cannot be resolved are skipped.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, failure.Wrap(failure.KindAssetUnavailable, err, "cannot read asset directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if utils.IsHidden(entry.Name()) || entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			utils.LogDebug("Skipping unreadable asset %s: %v", path, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}
