// Package logger builds the zap loggers used by the xdfinfo command.
//
// Library packages never create loggers themselves; they take one through a
// WithLogger option and stay silent otherwise.
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatLogfmt  = "logfmt"
)

// Config selects the output format and minimum level.
type Config struct {
	Format string        `mapstructure:"log-format"`
	Level  zapcore.Level `mapstructure:"log-level"`
}

// NewConfig returns a new instance of Config with defaults.
func NewConfig() Config {
	return Config{
		Format: FormatConsole,
		Level:  zapcore.InfoLevel,
	}
}

// New creates a logger writing to w.
//
// Timestamps are UTC RFC3339 and durations are printed in Go notation in
// every format.
func New(w io.Writer, c Config) (*zap.Logger, error) {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}
	config.EncodeDuration = func(d time.Duration, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(d.String())
	}

	encoder, err := newEncoder(c.Format, config)
	if err != nil {
		return nil, err
	}

	return zap.New(zapcore.NewCore(
		encoder,
		zapcore.Lock(zapcore.AddSync(w)),
		c.Level,
	)), nil
}

func newEncoder(format string, config zapcore.EncoderConfig) (zapcore.Encoder, error) {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		return zapcore.NewConsoleEncoder(config), nil
	case FormatJSON:
		return zapcore.NewJSONEncoder(config), nil
	case FormatLogfmt:
		return zaplogfmt.NewEncoder(config), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
