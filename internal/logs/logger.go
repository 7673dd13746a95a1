package logs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// New creates a zerolog logger that appends to the session log file at path.
// The terminal belongs to the TUI, so nothing is ever written to stdout.
// Every line carries a session id so concurrent sessions can be told apart.
func New(fs afero.Fs, path, level string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrapf(err, "log level %q", level)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "create log directory")
	}
	logFile, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrapf(err, "open log file %s", path)
	}

	return NewWithWriter(logFile, lvl), logFile, nil
}

// NewWithWriter builds the console-formatted logger over w.
func NewWithWriter(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}

	return zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Str("session", uuid.NewString()).
		Logger()
}
