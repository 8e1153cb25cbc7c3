package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gnzdotmx/pequebum/internal/compose"
	"github.com/gnzdotmx/pequebum/internal/config"
	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/publish"
	"github.com/gnzdotmx/pequebum/internal/script"
	"github.com/gnzdotmx/pequebum/internal/topic"
	"github.com/gnzdotmx/pequebum/internal/utils"
)

// Pipeline sequences the stages of one run
type Pipeline struct {
	cfg  *config.Config
	deps Deps
	rng  *rand.Rand
	now  func() time.Time
}

// New returns a pipeline. rng drives the palette choice of the color variant.
func New(cfg *config.Config, deps Deps, rng *rand.Rand) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps, rng: rng, now: time.Now}
}

// run carries values between stages
type run struct {
	report     *Report
	topic      topic.Topic
	script     script.Script
	background compose.Background
	videoFile  string
	result     publish.Result
}

type step struct {
	stage Stage
	exec  func(ctx context.Context, r *run) error
}

func (p *Pipeline) steps() []step {
	return []step{
		{StageSelectTopic, p.selectTopic},
		{StageGenerateScript, p.generateScript},
		{StageSelectAssets, p.selectAssets},
		{StageCompose, p.compose},
		{StagePublish, p.publish},
	}
}

// Run executes every stage and returns the report. It never returns an error
// and never panics: failures end the run in FAILED with the cause recorded.
func (p *Pipeline) Run(ctx context.Context) *Report {
	r := &run{report: newReport(p.cfg.Variant, p.now())}
	utils.Logger().Info().
		Str("run_id", r.report.RunID).
		Str("variant", string(p.cfg.Variant)).
		Msg("🚀 Starting PequeBum run")

	for _, s := range p.steps() {
		r.report.Stage = s.stage
		r.report.AddEvent(s.stage, EventStarted, fmt.Sprintf("Started %s", s.stage), nil)
		utils.LogVerbose("Stage %s", s.stage)

		err := failure.WithStage(safely(ctx, r, s.exec), string(s.stage))
		if err != nil && p.dispatch(r.report, s.stage, err) {
			p.cleanup(ctx, r, false)
			r.report.fail(s.stage, err, p.now())
			p.saveState(r.report)
			return r.report
		}
		r.report.AddEvent(s.stage, EventCompleted, fmt.Sprintf("Completed %s", s.stage), nil)
	}

	r.report.Stage = StageCleanup
	p.cleanup(ctx, r, true)
	r.report.finish(p.now())

	utils.LogSuccess("✅ Video published: %s", r.result.URL)
	p.saveState(r.report)
	return r.report
}

// dispatch logs err and reports whether the run must halt
func (p *Pipeline) dispatch(report *Report, stage Stage, err error) bool {
	if failure.Recoverable(err) {
		utils.LogWarning("⚠️ %v", err)
		report.warn(stage, err)
		return false
	}

	switch failure.KindOf(err) {
	case failure.KindAssetUnavailable:
		utils.LogError("❌ No assets available: %v", err)
	case failure.KindComposition:
		utils.LogError("❌ Failed to render video: %v", err)
	case failure.KindCredential:
		utils.LogError("❌ Invalid YouTube credentials: %v", err)
	case failure.KindPublish:
		utils.LogError("❌ Failed to upload to YouTube: %v", err)
	default:
		utils.LogError("❌ Unexpected error in %s: %v", stage, err)
	}
	return true
}

// safely turns a panicking stage into an unclassified error
func safely(ctx context.Context, r *run, exec func(context.Context, *run) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return exec(ctx, r)
}

func (p *Pipeline) selectTopic(_ context.Context, r *run) error {
	r.topic = p.deps.Topics.Select()
	r.report.Topic = &r.topic
	return nil
}

func (p *Pipeline) generateScript(ctx context.Context, r *run) error {
	r.script = p.deps.Scripts.Generate(ctx, r.topic)
	r.report.Script = r.script.Text
	r.report.ScriptSource = r.script.Source
	if r.script.Source != script.SourceGenerated {
		r.report.AddEvent(StageGenerateScript, EventWarning, "fallback narration used",
			map[string]interface{}{"source": string(r.script.Source)})
	}
	return nil
}

func (p *Pipeline) selectAssets(_ context.Context, r *run) error {
	if p.cfg.Variant == config.VariantColor {
		color := compose.PickColor(p.rng)
		r.background = compose.ColorBackground{Color: color}
		r.report.Color = color.Hex()
		utils.LogVerbose("🎨 Background color: %s", color.Hex())
		return nil
	}

	set, err := p.deps.Assets.PickSet(p.cfg.VideoDir, p.cfg.AudioDir)
	if err != nil {
		return err
	}
	r.background = compose.AssetBackground{Assets: set}
	r.report.Assets = &set
	return nil
}

func (p *Pipeline) compose(ctx context.Context, r *run) error {
	path, err := p.deps.Composer.Compose(ctx, r.script, r.background)
	if err != nil {
		return err
	}
	r.videoFile = path
	r.report.VideoFile = path
	return nil
}

func (p *Pipeline) publish(ctx context.Context, r *run) error {
	res, err := p.deps.Publisher.Publish(ctx, r.videoFile, p.cfg.Title)
	if err != nil {
		return err
	}
	r.result = res
	r.report.VideoID = res.ID
	r.report.VideoURL = res.URL
	return nil
}

func (p *Pipeline) saveState(report *Report) {
	if p.cfg.StateFile == "" {
		return
	}
	if err := report.Save(p.cfg.StateFile); err != nil {
		utils.LogWarning("Failed to save run state: %v", err)
	}
}
