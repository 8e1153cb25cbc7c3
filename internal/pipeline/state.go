package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gnzdotmx/pequebum/internal/config"
	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/google/uuid"
)

func newReport(variant config.Variant, now time.Time) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Variant:   variant,
		StartedAt: now,
		Stage:     StageSelectTopic,
		Status:    StatusRunning,
		History:   make([]Event, 0, 16),
	}
}

// AddEvent appends an event to the run history
func (r *Report) AddEvent(stage Stage, typ EventType, message string, data map[string]interface{}) {
	r.History = append(r.History, Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Stage:     stage,
		Type:      typ,
		Message:   message,
		Data:      data,
	})
}

func (r *Report) warn(stage Stage, err error) {
	r.Warnings = append(r.Warnings, err.Error())
	r.AddEvent(stage, EventWarning, err.Error(), map[string]interface{}{
		"kind": string(failure.KindOf(err)),
	})
}

func (r *Report) fail(stage Stage, err error, now time.Time) {
	r.FailedStage = stage
	r.Stage = StageFailed
	r.Status = StatusFailed
	r.Error = err.Error()
	r.ErrorKind = failure.KindOf(err)
	r.CompletedAt = now
	r.AddEvent(stage, EventFailed, err.Error(), map[string]interface{}{
		"kind": string(r.ErrorKind),
	})
}

func (r *Report) finish(now time.Time) {
	r.Stage = StageDone
	r.Status = StatusComplete
	r.CompletedAt = now
}

// Save writes the report as indented JSON, replacing path atomically
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// LoadReport reads a report written by Save
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return &r, nil
}
