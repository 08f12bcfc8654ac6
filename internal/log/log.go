package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
	mu         sync.Mutex
)

// initLogger initializes the global logger to write human-readable lines to
// stderr. Default minimum level is INFO.
func initLogger() {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		logger = newLogger(os.Stderr, true)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
}

func newLogger(w io.Writer, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetOutput redirects log output. Tests use it with a buffer and
// console=false to get one JSON object per line.
func SetOutput(w io.Writer, console bool) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, console)
}

func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case LevelError:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// ParseLevel maps "debug", "info", "error" (any case) to a Level. Unknown
// values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LevelDebug):
		return LevelDebug
	case string(LevelError):
		return LevelError
	default:
		return LevelInfo
	}
}

// current returns a copy of the logger so SetOutput may swap it while
// other goroutines log.
func current() zerolog.Logger {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func Debug(msg string, kv ...any) {
	l := current()
	withKVs(l.Debug(), kv...).Msg(msg)
}

func Info(msg string, kv ...any) {
	l := current()
	withKVs(l.Info(), kv...).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	l := current()
	withKVs(l.Error().Err(err), kv...).Msg(msg)
}

// withKVs attaches key-value pairs to the event. Non-string keys are
// skipped; a trailing odd value is ignored.
func withKVs(ev *zerolog.Event, kv ...any) *zerolog.Event {
	if ev == nil {
		return nil
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}
