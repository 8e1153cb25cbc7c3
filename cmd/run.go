package cmd

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnzdotmx/pequebum/internal/assets"
	"github.com/gnzdotmx/pequebum/internal/compose"
	"github.com/gnzdotmx/pequebum/internal/config"
	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/pipeline"
	"github.com/gnzdotmx/pequebum/internal/publish"
	"github.com/gnzdotmx/pequebum/internal/script"
	"github.com/gnzdotmx/pequebum/internal/services/archive"
	"github.com/gnzdotmx/pequebum/internal/services/gemini"
	"github.com/gnzdotmx/pequebum/internal/services/youtube"
	"github.com/gnzdotmx/pequebum/internal/topic"
	"github.com/gnzdotmx/pequebum/internal/utils"

	"github.com/spf13/cobra"
)

// ErrRunFailed is returned under --strict-exit when the pipeline ends in FAILED
var ErrRunFailed = errors.New("pipeline run failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce and publish one video",
	Long:  `Select a topic, write the narration, render the video and upload it. Same as running without a subcommand.`,
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		utils.LogError("❌ Invalid configuration: %v", err)
		return exitStatus(failure.Wrap(failure.KindConfig, err, "invalid configuration"))
	}

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		utils.LogError("❌ %v", err)
		return exitStatus(err)
	}

	report := p.Run(ctx)
	if !report.Succeeded() {
		return exitStatus(ErrRunFailed)
	}
	return nil
}

// exitStatus keeps caught failures at exit status 0 unless --strict-exit is set
func exitStatus(err error) error {
	if strictExit {
		return err
	}
	return nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	rng := newRand(cfg.Seed)

	catalog := topic.ColorCatalog
	if cfg.Variant == config.VariantAssets {
		catalog = topic.AssetCatalog
	}

	var model script.Model
	svc, err := gemini.NewService(ctx, os.Getenv("GEMINI_KEY"), cfg.Gemini.Model)
	if err != nil {
		utils.LogWarning("Gemini unavailable, fallback narration will be used: %v", err)
		model = gemini.Unavailable{Err: err}
	} else {
		model = svc
	}

	composer, err := compose.New(cfg.OutputDir, cfg.FontFile)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Topics:   topic.NewSelector(catalog, rng),
		Scripts:  script.NewGenerator(model, cfg.Gemini.Timeout),
		Assets:   assets.NewPicker(rng),
		Composer: composer,
		Publisher: publish.New(youtube.NewService(), publish.Options{
			ChunkSize:         cfg.Upload.ChunkSize,
			Timeout:           cfg.Upload.Timeout,
			NotifySubscribers: cfg.Upload.NotifySubscribers,
		}),
	}

	if cfg.Archive.Enabled() {
		a, err := archive.New(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix, cfg.Archive.Region)
		if err != nil {
			utils.LogWarning("S3 archive disabled: %v", err)
		} else {
			deps.Archiver = a
		}
	}

	return pipeline.New(cfg, deps, rng), nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
