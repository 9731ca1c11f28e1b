package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled package logger used by the API service.
// Backed by zap; the level can be changed at runtime with Init.

var (
	atom  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = newLogger(zapcore.Lock(os.Stdout))
	sugar = base.Sugar()
)

func newLogger(out zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), out, atom)
	return zap.New(core)
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		atom.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		atom.SetLevel(zapcore.WarnLevel)
	case "error":
		atom.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		atom.SetLevel(zapcore.FatalLevel)
	default:
		atom.SetLevel(zapcore.InfoLevel)
	}
}

// L returns the structured logger for call sites that want typed fields.
func L() *zap.Logger { return base }

func Debugf(format string, v ...interface{}) { sugar.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { sugar.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { sugar.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { sugar.Errorf(format, v...) }

func Fatalf(format string, v ...interface{}) {
	sugar.Fatalf(format, v...)
}

func Debug(v string) { sugar.Debug(v) }
func Info(v string)  { sugar.Info(v) }
func Warn(v string)  { sugar.Warn(v) }
func Error(v string) { sugar.Error(v) }

// Sync flushes buffered entries; call before exit.
func Sync() { _ = base.Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	switch atom.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	case zapcore.FatalLevel:
		return "fatal"
	}
	return "info"
}
