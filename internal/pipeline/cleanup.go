package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gnzdotmx/pequebum/internal/compose"
	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/utils"
)

// FailedDir is the directory under the output directory holding preserved renders
const FailedDir = "failed"

// cleanup disposes of the render on every exit path once COMPOSE produced one.
// Failures here never change the outcome of the run.
func (p *Pipeline) cleanup(ctx context.Context, r *run, published bool) {
	if r.videoFile == "" {
		r.report.AddEvent(StageCleanup, EventSkipped, "no render to clean up", nil)
		return
	}

	p.archive(ctx, r, published)

	if !published && p.cfg.KeepFailedRenders {
		dst := filepath.Join(p.cfg.OutputDir, FailedDir,
			p.now().Format("20060102-150405")+"-"+r.report.RunID, compose.OutputName)
		if err := utils.MoveFile(r.videoFile, dst); err != nil {
			p.dispatch(r.report, StageCleanup, failure.Wrap(failure.KindCleanup, err, "cannot preserve failed render"))
			return
		}
		r.report.PreservedFile = dst
		r.report.AddEvent(StageCleanup, EventCompleted, "render preserved", map[string]interface{}{"path": dst})
		utils.LogInfo("Render kept for inspection: %s", dst)
		return
	}

	if err := utils.RemoveIfExists(r.videoFile); err != nil {
		p.dispatch(r.report, StageCleanup, failure.Wrap(failure.KindCleanup, err, "cannot delete %s", r.videoFile))
		return
	}
	r.report.AddEvent(StageCleanup, EventCompleted, "render deleted", map[string]interface{}{"path": r.videoFile})
	utils.LogVerbose("🧹 Local render removed: %s", r.videoFile)
}

func (p *Pipeline) archive(ctx context.Context, r *run, published bool) {
	if p.deps.Archiver == nil {
		return
	}

	meta := map[string]string{
		"run-id":    r.report.RunID,
		"published": strconv.FormatBool(published),
		"source":    string(r.script.Source),
	}
	if r.result.ID != "" {
		meta["video-id"] = r.result.ID
	}

	uri, err := p.deps.Archiver.Store(ctx, r.videoFile, r.report.RunID, meta)
	if err != nil {
		p.dispatch(r.report, StageCleanup, failure.Wrap(failure.KindCleanup, err, "cannot archive render"))
		return
	}
	r.report.ArchiveURI = uri
	r.report.AddEvent(StageCleanup, EventCompleted, "render archived", map[string]interface{}{"uri": uri})
}

// PreservedRender is a failed render kept under FailedDir
type PreservedRender struct {
	Dir     string
	ModTime time.Time
}

// ListPreserved returns preserved renders under outputDir, newest first
func ListPreserved(outputDir string) ([]PreservedRender, error) {
	root := filepath.Join(outputDir, FailedDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []PreservedRender
	for _, e := range entries {
		if !e.IsDir() || utils.IsHidden(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, PreservedRender{Dir: filepath.Join(root, e.Name()), ModTime: info.ModTime()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

// PrunePreserved removes preserved renders beyond the newest keep entries and
// any older than maxAge. A zero keep or maxAge disables that rule. With dryRun
// nothing is removed. It returns the directories selected for removal.
func PrunePreserved(outputDir string, keep int, maxAge time.Duration, now time.Time, dryRun bool) ([]string, error) {
	renders, err := ListPreserved(outputDir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for i, r := range renders {
		tooMany := keep > 0 && i >= keep
		tooOld := maxAge > 0 && now.Sub(r.ModTime) > maxAge
		if !tooMany && !tooOld {
			continue
		}
		removed = append(removed, r.Dir)
		if dryRun {
			continue
		}
		if err := os.RemoveAll(r.Dir); err != nil {
			return removed, err
		}
	}
	return removed, nil
}
