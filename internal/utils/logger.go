package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the level of logging verbosity
type LogLevel int

const (
	// LevelQuiet suppresses all output except errors
	LevelQuiet LogLevel = iota
	// LevelNormal shows standard pipeline progress
	LevelNormal
	// LevelVerbose shows detailed information about each stage
	LevelVerbose
	// LevelDebug shows all debugging information, including ffmpeg arguments
	LevelDebug
)

var (
	// CurrentLogLevel is the global log level setting
	CurrentLogLevel LogLevel = LevelNormal

	logger = newConsoleLogger(os.Stderr, false)
)

func newConsoleLogger(w io.Writer, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: noColor}
	return zerolog.New(out).With().Timestamp().Logger().Level(CurrentLogLevel.toZerolog())
}

func (l LogLevel) toZerolog() zerolog.Level {
	switch l {
	case LevelQuiet:
		return zerolog.ErrorLevel
	case LevelVerbose:
		return zerolog.DebugLevel
	case LevelDebug:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLogLevel sets the global logging level
func SetLogLevel(level LogLevel) {
	CurrentLogLevel = level
	logger = logger.Level(level.toZerolog())
}

// SetOutput redirects log output, without colors, to w
func SetOutput(w io.Writer) {
	logger = newConsoleLogger(w, true)
}

// Logger exposes the underlying structured logger for callers that attach fields.
func Logger() *zerolog.Logger {
	return &logger
}

// LogLevelFromString converts a string level name to LogLevel
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "quiet", "q":
		return LevelQuiet
	case "normal", "n":
		return LevelNormal
	case "verbose", "v":
		return LevelVerbose
	case "debug", "d":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// LogError logs an error message (always shown)
func LogError(format string, args ...interface{}) {
	logger.Error().Msg(fmt.Sprintf(format, args...))
}

// LogInfo logs an informational message at Normal+ level
func LogInfo(format string, args ...interface{}) {
	logger.Info().Msg(fmt.Sprintf(format, args...))
}

// LogSuccess logs a success message at Normal+ level
func LogSuccess(format string, args ...interface{}) {
	logger.Info().Bool("ok", true).Msg(fmt.Sprintf(format, args...))
}

// LogVerbose logs a message at Verbose+ level
func LogVerbose(format string, args ...interface{}) {
	logger.Debug().Msg(fmt.Sprintf(format, args...))
}

// LogDebug logs a debug message at Debug level
func LogDebug(format string, args ...interface{}) {
	logger.Trace().Msg(fmt.Sprintf(format, args...))
}

// LogWarning logs a warning message at Normal+ level
func LogWarning(format string, args ...interface{}) {
	logger.Warn().Msg(fmt.Sprintf(format, args...))
}
