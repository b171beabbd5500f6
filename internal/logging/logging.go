package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Logger keeps the printf-style surface the handlers use while writing
// structured lines to the log file (and the console when verbose).
type Logger struct {
	zl             zerolog.Logger
	f              *os.File
	consoleVerbose bool
}

func New(path string, consoleVerbose bool) (*Logger, error) {
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	var out io.Writer = f
	if consoleVerbose {
		out = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: os.Stderr})
	}
	l := NewWriter(out, consoleVerbose)
	l.f = f
	return l, nil
}

// NewWriter logs to w only. Debug lines are dropped unless verbose.
func NewWriter(w io.Writer, verbose bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl, consoleVerbose: verbose}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Close() {
	if l.f != nil {
		_ = l.f.Close()
	}
}

// Tagged returns a child logger whose lines carry component=tag.
func (l *Logger) Tagged(tag string) *Logger {
	return &Logger{
		zl:             l.zl.With().Str("component", tag).Logger(),
		consoleVerbose: l.consoleVerbose,
	}
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		zl:             l.zl.With().Str(key, value).Logger(),
		consoleVerbose: l.consoleVerbose,
	}
}

func (l *Logger) write(ev *zerolog.Event, format string, args ...any) {
	ev.Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any)  { l.write(l.zl.Info(), format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.write(l.zl.Warn(), format, args...) }
func (l *Logger) Error(format string, args ...any) { l.write(l.zl.Error(), format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.write(l.zl.Debug(), format, args...) }

// Failure logs err at error level as a structured field.
func (l *Logger) Failure(err error, format string, args ...any) {
	l.write(l.zl.Error().Err(err), format, args...)
}
