// Package applog builds the process logger: a zap core exposed through
// log/slog, so library code only ever sees *slog.Logger.
package applog

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and destination.
type Config struct {
	Level     string // debug | info | warn | error
	Format    string // json | console
	AddSource bool
	Output    io.Writer
}

// New builds a slog logger backed by zap. Call Sync on the returned zap
// logger before exit to flush buffered entries.
func New(cfg Config) (*slog.Logger, *zap.Logger) {
	zl := buildZap(cfg)
	handler := slogzap.Option{
		Level:     parseSlogLevel(cfg.Level),
		Logger:    zl,
		AddSource: cfg.AddSource,
	}.NewZapHandler()
	return slog.New(handler), zl
}

// Init builds the logger and installs it as the slog and zap default.
func Init(cfg Config) (*slog.Logger, *zap.Logger) {
	logger, zl := New(cfg)
	zap.ReplaceGlobals(zl)
	slog.SetDefault(logger)
	return logger, zl
}

func buildZap(cfg Config) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = "time"

	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "console") {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(out), parseZapLevel(cfg.Level))

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}

func parseSlogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseZapLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
