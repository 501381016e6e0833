package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the subset of *log.Logger that services depend on.
// Keyvals are alternating key/value pairs.
type Logger interface {
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// New builds the process logger. Prod-like environments get JSON lines,
// everything else the human-readable text formatter. DEBUG=1 turns on
// debug level and caller reporting.
func New(appEnv string) *log.Logger {
	return NewWithWriter(os.Stderr, appEnv)
}

func NewWithWriter(w io.Writer, appEnv string) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          "tooma",
	}
	if isProdLike(appEnv) {
		opts.Formatter = log.JSONFormatter
	}
	if os.Getenv("DEBUG") == "1" {
		opts.ReportCaller = true
		opts.Level = log.DebugLevel
	} else {
		opts.Level = log.InfoLevel
	}
	return log.NewWithOptions(w, opts)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}
