// Package logging builds the process-wide zap logger and carries the
// per-request logger through context.
package logging

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RequestIDField is the log field holding the request id.
const RequestIDField = "x_request_id"

type ctxKey struct{}

var _logger = zap.NewNop()

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Pretty bool   // development encoder with stack traces on errors
	File   string // optional rotated log file written in addition to stderr
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	var c zap.Config
	var zopts []zap.Option
	if opts.Pretty {
		c = zap.NewDevelopmentConfig()
		zopts = append(zopts, zap.AddStacktrace(zap.ErrorLevel))
	} else {
		c = zap.NewProductionConfig()
	}

	levelName := opts.Level
	if levelName == "" {
		levelName = "info"
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("could not parse log level %s", levelName)
	}
	c.Level = level

	if opts.File != "" {
		rotator := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
		var enc zapcore.Encoder
		if opts.Pretty {
			enc = zapcore.NewConsoleEncoder(c.EncoderConfig)
		} else {
			enc = zapcore.NewJSONEncoder(c.EncoderConfig)
		}
		core := zapcore.NewTee(
			zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level),
			zapcore.NewCore(enc, rotator, level),
		)
		return zap.New(core, append(zopts, zap.AddCaller())...), nil
	}

	return c.Build(zopts...)
}

// SetDefault replaces the logger returned by L and FromContext.
func SetDefault(l *zap.Logger) {
	if l != nil {
		_logger = l
	}
}

// L returns the process-wide logger.
func L() *zap.Logger { return _logger }

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger carried by ctx, or the default one.
// ctx is nillable.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return _logger
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return _logger
}
