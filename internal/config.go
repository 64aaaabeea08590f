package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE,default=64"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// CharacterRune rejects multi-character replacement settings early,
// at config time rather than mid-censor.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// ParseLevel maps the configured level name onto slog's levels,
// defaulting to Info on anything unrecognized.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
