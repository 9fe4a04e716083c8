// Package logging builds the zerolog logger shared by the pipeline stages.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for --log-file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 14
)

// Options select the logger level and sinks.
type Options struct {
	Verbose bool
	Quiet   bool
	NoColor bool
	// LogFile, when set, receives a JSON copy of every entry with rotation.
	LogFile string
	// Writer overrides the console sink (stderr by default).
	Writer io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger and a closer for the optional log file. The closer is
// never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	console := consoleWriter(out, opts.NoColor)

	var (
		writer io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if opts.LogFile != "" {
		if dir := filepath.Dir(opts.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return zerolog.Nop(), closer, fmt.Errorf("create log directory: %w", err)
			}
		}
		lj := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		writer = zerolog.MultiLevelWriter(console, lj)
		closer = lj
	}

	logger := zerolog.New(writer).Level(SelectLevel(opts.Verbose, opts.Quiet)).With().Timestamp().Logger()
	return logger, closer, nil
}

// SelectLevel maps the verbosity flags to a level. Verbose wins over quiet.
func SelectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    noColor || os.Getenv("NO_COLOR") != "" || !isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
