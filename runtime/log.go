package runtime

import (
	"os"

	"github.com/sirupsen/logrus"
)

// TraceLevel gates how much of the core's internal tracing a host sees.
type TraceLevel int

const (
	TraceOff TraceLevel = iota
	TraceEvent
	TracePipeline
	TraceVerbose
)

// ParseTraceLevel parses the string form hosts configure with.
func ParseTraceLevel(s string) TraceLevel {
	switch s {
	case "event":
		return TraceEvent
	case "pipeline":
		return TracePipeline
	case "verbose":
		return TraceVerbose
	default:
		return TraceOff
	}
}

// Logger is the category-tagged trace sink. It wraps logrus the same way
// the pack's service-layer repo wraps it in pkg/logger: a small struct so
// core signatures never leak logrus types.
type Logger struct {
	entry *logrus.Logger
	level TraceLevel
}

// NewLogger builds a Logger writing to stdout at the given trace level.
// deterministicMode suppresses timestamps so two runs with identical
// inputs produce byte-identical trace output.
func NewLogger(level TraceLevel, deterministicMode bool) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	formatter := &logrus.TextFormatter{DisableTimestamp: deterministicMode}
	l.SetFormatter(formatter)
	switch level {
	case TraceOff:
		l.SetLevel(logrus.ErrorLevel)
	case TraceEvent:
		l.SetLevel(logrus.WarnLevel)
	case TracePipeline:
		l.SetLevel(logrus.InfoLevel)
	case TraceVerbose:
		l.SetLevel(logrus.DebugLevel)
	}
	return &Logger{entry: l, level: level}
}

// NopLogger discards everything; used where a host doesn't wire a logger.
func NopLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.PanicLevel)
	return &Logger{entry: l, level: TraceOff}
}

// Level reports the configured trace level, so callers can skip building
// an expensive trace message when it would be discarded anyway.
func (l *Logger) Level() TraceLevel {
	if l == nil {
		return TraceOff
	}
	return l.level
}

func (l *Logger) fields(category string) *logrus.Entry {
	return l.entry.WithField("category", category)
}

func (l *Logger) Debugf(category, format string, args ...any) {
	if l == nil {
		return
	}
	l.fields(category).Debugf(format, args...)
}

func (l *Logger) Infof(category, format string, args ...any) {
	if l == nil {
		return
	}
	l.fields(category).Infof(format, args...)
}

func (l *Logger) Warnf(category, format string, args ...any) {
	if l == nil {
		return
	}
	l.fields(category).Warnf(format, args...)
}

func (l *Logger) Errorf(category, format string, args ...any) {
	if l == nil {
		return
	}
	l.fields(category).Errorf(format, args...)
}
