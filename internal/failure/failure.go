// Package failure classifies pipeline errors so the orchestrator can decide
// whether a run continues or halts.
package failure

import (
	"errors"
	"fmt"
)

// Kind is the category of a pipeline error
type Kind string

const (
	// KindUnknown marks errors that were never classified. They halt the run.
	KindUnknown Kind = "unknown"
	// KindGeneration covers text model failures. Recovered by the fallback chain.
	KindGeneration Kind = "generation"
	// KindAssetUnavailable means an asset directory had no usable file.
	KindAssetUnavailable Kind = "asset_unavailable"
	// KindComposition covers probe and render failures.
	KindComposition Kind = "composition"
	// KindCredential means the upload token is absent or unusable.
	KindCredential Kind = "credential"
	// KindPublish covers upload transport and API rejections.
	KindPublish Kind = "publish"
	// KindCleanup covers failures removing or preserving the render.
	KindCleanup Kind = "cleanup"
	// KindConfig covers invalid configuration found at startup.
	KindConfig Kind = "config"
)

// Error is a classified pipeline error
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Stage != "" {
		prefix = e.Stage + ": " + prefix
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a classified error without a cause
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of err, or KindUnknown when err carries none
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Recoverable reports whether the run may continue after err
func Recoverable(err error) bool {
	return KindOf(err) == KindGeneration || KindOf(err) == KindCleanup
}

// WithStage returns err annotated with the stage it surfaced in. Errors that
// already carry a stage keep it.
func WithStage(err error, stage string) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Stage == "" {
			cp := *fe
			cp.Stage = stage
			return &cp
		}
		return err
	}
	return &Error{Kind: KindUnknown, Stage: stage, Message: "unclassified error", Err: err}
}
