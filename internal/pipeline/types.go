// Package pipeline runs one fun-fact video from topic to published upload.
package pipeline

import (
	"context"
	"time"

	"github.com/gnzdotmx/pequebum/internal/assets"
	"github.com/gnzdotmx/pequebum/internal/compose"
	"github.com/gnzdotmx/pequebum/internal/config"
	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/publish"
	"github.com/gnzdotmx/pequebum/internal/script"
	"github.com/gnzdotmx/pequebum/internal/topic"
)

// Stage is a state of the run
type Stage string

const (
	StageSelectTopic    Stage = "SELECT_TOPIC"
	StageGenerateScript Stage = "GENERATE_SCRIPT"
	StageSelectAssets   Stage = "SELECT_ASSETS"
	StageCompose        Stage = "COMPOSE"
	StagePublish        Stage = "PUBLISH"
	StageCleanup        Stage = "CLEANUP"
	StageDone           Stage = "DONE"
	StageFailed         Stage = "FAILED"
)

// Status is the overall outcome of a run
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// EventType classifies history entries
type EventType string

const (
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventSkipped   EventType = "skipped"
	EventWarning   EventType = "warning"
	EventFailed    EventType = "failed"
)

// Event is one entry of the run history
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Stage     Stage                  `json:"stage"`
	Type      EventType              `json:"type"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Report is the outcome of a run, written to the state file when one is configured
type Report struct {
	RunID       string         `json:"runId"`
	Variant     config.Variant `json:"variant"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt time.Time      `json:"completedAt"`
	Stage       Stage          `json:"stage"`
	Status      Status         `json:"status"`

	Topic         *topic.Topic  `json:"topic,omitempty"`
	Script        string        `json:"script,omitempty"`
	ScriptSource  script.Source `json:"scriptSource,omitempty"`
	Color         string        `json:"color,omitempty"`
	Assets        *assets.Set   `json:"assets,omitempty"`
	VideoFile     string        `json:"videoFile,omitempty"`
	VideoID       string        `json:"videoId,omitempty"`
	VideoURL      string        `json:"videoUrl,omitempty"`
	ArchiveURI    string        `json:"archiveUri,omitempty"`
	PreservedFile string        `json:"preservedFile,omitempty"`

	FailedStage Stage        `json:"failedStage,omitempty"`
	Error       string       `json:"error,omitempty"`
	ErrorKind   failure.Kind `json:"errorKind,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
	History     []Event      `json:"history"`
}

// Succeeded reports whether the run reached DONE
func (r *Report) Succeeded() bool {
	return r.Stage == StageDone
}

// TopicSelector picks the category of the video
type TopicSelector interface {
	Select() topic.Topic
}

// ScriptGenerator writes the narration. It never fails.
type ScriptGenerator interface {
	Generate(ctx context.Context, t topic.Topic) script.Script
}

// AssetPicker chooses the clip and music for the assets variant
type AssetPicker interface {
	PickSet(videoDir, audioDir string) (assets.Set, error)
}

// Composer renders the video and returns its path
type Composer interface {
	Compose(ctx context.Context, s script.Script, bg compose.Background) (string, error)
}

// Publisher uploads the rendered file
type Publisher interface {
	Publish(ctx context.Context, filePath, title string) (publish.Result, error)
}

// Archiver keeps a remote copy of a render
type Archiver interface {
	Store(ctx context.Context, localPath, runID string, metadata map[string]string) (string, error)
}

// Deps are the collaborators of a run. Archiver may be nil.
type Deps struct {
	Topics    TopicSelector
	Scripts   ScriptGenerator
	Assets    AssetPicker
	Composer  Composer
	Publisher Publisher
	Archiver  Archiver
}
