package util

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	appLogger zerolog.Logger
	loggerMu  sync.RWMutex
)

func init() {
	appLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// InitLogger configures the process logger. Development environments get
// console output, everything else JSON lines.
func InitLogger(level, env string) {
	InitLoggerWithWriter(level, env, os.Stdout)
}

// InitLoggerWithWriter is InitLogger with an explicit sink.
func InitLoggerWithWriter(level, env string, w io.Writer) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	loggerMu.Lock()
	appLogger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	loggerMu.Unlock()
}

// Log returns the process logger.
func Log() *zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	l := appLogger
	return &l
}
