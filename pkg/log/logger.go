// Package log provides structured logging for btcmacro on top of zerolog.
//
// The package exposes a small key/value Logger used by the estimators and
// the pipeline. Call SetupLogger once at process start, then obtain named
// loggers with GetLoggerWithName:
//
//	log.SetupLogger("info")
//	logger := log.GetLoggerWithName("pipeline").With(log.ComponentKey, "train")
//	logger.Info("Training started", log.SamplesKey, n)
package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Structured logging keys used across the codebase.
const (
	ComponentKey  = "component"
	ModelNameKey  = "model"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	DurationMsKey = "duration_ms"
	PredsKey      = "predictions"
)

// Well-known values for OperationKey and PhaseKey.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	PhaseTraining    = "training"
	PhaseInference   = "inference"
)

// Logger is the structured logging interface used by the library packages.
// Fields are passed as alternating key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
}

var (
	mu   sync.RWMutex
	root zerolog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// SetupLogger configures the process-wide root logger. Level is one of
// "debug", "info", "warn", "error"; unknown values fall back to info.
func SetupLogger(level string) {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	mu.Lock()
	defer mu.Unlock()
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(lvl)
}

// GetLogger returns the root logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zlogger{zl: root}
}

// GetLoggerWithName returns a logger tagged with a subsystem name.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zlogger{zl: root.With().Str("logger", name).Logger()}
}

// LogError logs err at error level on the root logger.
func LogError(err error, msg string) {
	GetLogger().Error(msg, "error", err)
}

type zlogger struct {
	zl zerolog.Logger
}

func (l *zlogger) Debug(msg string, kv ...any) { emit(l.zl.Debug(), msg, kv) }
func (l *zlogger) Info(msg string, kv ...any)  { emit(l.zl.Info(), msg, kv) }
func (l *zlogger) Warn(msg string, kv ...any)  { emit(l.zl.Warn(), msg, kv) }
func (l *zlogger) Error(msg string, kv ...any) { emit(l.zl.Error(), msg, kv) }

func (l *zlogger) With(kv ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, kv[i+1])
	}
	return &zlogger{zl: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
