// Package report renders evaluation summaries for operators: as text for the
// CLI and as structured zap log entries for the server.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments that get the development logger profile.
const (
	EnvDevelopment = "development"
	EnvLocal       = "local"
)

// NewLogger builds a JSON zap logger writing to stderr. Development and
// local environments use zap's development profile; everything else uses
// the production profile. An empty level defaults to debug in development
// and info elsewhere.
func NewLogger(level, env string) (*zap.Logger, error) {
	return NewLoggerTo(os.Stderr, level, env)
}

// NewLoggerTo is NewLogger with an explicit output.
func NewLoggerTo(w io.Writer, level, env string) (*zap.Logger, error) {
	dev := env == EnvDevelopment || env == EnvLocal

	encoderCfg := zap.NewProductionEncoderConfig()
	opts := []zap.Option{zap.AddCaller()}
	if dev {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		opts = append(opts, zap.Development())
	}
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	atomic, err := resolveLevel(level, dev)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(w)), atomic)
	return zap.New(core, opts...), nil
}

func resolveLevel(level string, dev bool) (zap.AtomicLevel, error) {
	if strings.TrimSpace(level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(level); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid level %q: %w", level, err)
		}
		return zap.NewAtomicLevelAt(parsed), nil
	}
	if dev {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}
