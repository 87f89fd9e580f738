// Package utils provides the logging facility shared across h3mux, shaped
// like the teacher's github.com/lucas-clemente/quic-go/internal/utils
// logger (Debugf/Infof/Errorf + WithPrefix, a package-level DefaultLogger),
// backed by go.uber.org/zap the way packetd-packetd/logger wires zap under
// a small Options struct.
package utils

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the minimal logging surface the h3 core depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithPrefix(prefix string) Logger
}

// Options configures a Logger backend.
type Options struct {
	Stdout     bool
	Level      string
	Filename   string
	MaxSize    int // MB
	MaxAge     int // days
	MaxBackups int
}

type logger struct {
	sugared *zap.SugaredLogger
	prefix  string
}

func levelFromString(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "info", "":
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a Logger from Options.
func New(opt Options) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	var w zapcore.WriteSyncer
	switch {
	case opt.Stdout || opt.Filename == "":
		w = zapcore.AddSync(os.Stdout)
	default:
		if err := os.MkdirAll(filepath.Dir(opt.Filename), 0o755); err != nil {
			w = zapcore.AddSync(os.Stdout)
			break
		}
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opt.Filename,
			MaxSize:    opt.MaxSize,
			MaxBackups: opt.MaxBackups,
			MaxAge:     opt.MaxAge,
			LocalTime:  false,
		})
	}

	core := zapcore.NewCore(encoder, w, levelFromString(opt.Level))
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &logger{sugared: zl.Sugar()}
}

func (l *logger) with(format string) string {
	if l.prefix == "" {
		return format
	}
	return l.prefix + ": " + format
}

func (l *logger) Debugf(format string, args ...interface{}) { l.sugared.Debugf(l.with(format), args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.sugared.Infof(l.with(format), args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.sugared.Warnf(l.with(format), args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.sugared.Errorf(l.with(format), args...) }

func (l *logger) WithPrefix(prefix string) Logger {
	p := prefix
	if l.prefix != "" {
		p = l.prefix + " " + prefix
	}
	return &logger{sugared: l.sugared, prefix: p}
}

// DefaultLogger logs to stdout at info level, matching the teacher's
// package-level utils.DefaultLogger used throughout client.go/conn.go.
var DefaultLogger Logger = New(Options{Stdout: true, Level: "info"})
