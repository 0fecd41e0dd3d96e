package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"qslgen/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths lists "stdout", "stderr" or file paths. Files are appended to.
	OutputPaths []string
	// FileLevel overrides Level for file outputs, so the diagnostic log can
	// keep debug detail while the terminal stays at info.
	FileLevel   string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	terminal, files, err := openSinks(opts.OutputPaths)
	if err != nil {
		return nil, err
	}

	termLevel := parseLevel(opts.Level)
	fileLevel := termLevel
	if strings.TrimSpace(opts.FileLevel) != "" {
		fileLevel = parseLevel(opts.FileLevel)
	}

	build := func(w io.Writer, level slog.Level) slog.Handler {
		lvl := new(slog.LevelVar)
		lvl.Set(level)
		addSource := opts.Development || level <= slog.LevelDebug
		if format == "json" {
			return newJSONHandler(w, lvl, addSource)
		}
		return newPrettyHandler(w, lvl, addSource)
	}

	var handlers fanoutHandler
	if w := combine(terminal); w != nil {
		handlers = append(handlers, build(w, termLevel))
	}
	if w := combine(files); w != nil {
		handlers = append(handlers, build(w, fileLevel))
	}
	switch len(handlers) {
	case 0:
		return slog.New(build(os.Stdout, termLevel)), nil
	case 1:
		return slog.New(handlers[0]), nil
	default:
		return slog.New(handlers), nil
	}
}

// NewFromConfig creates a logger writing to stderr and the diagnostic log in
// the output directory. The diagnostic log always records debug entries.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}})
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", cfg.LogFilePath()},
		FileLevel:   "debug",
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openSinks splits paths into terminal streams and opened log files.
func openSinks(paths []string) (terminal, files []io.Writer, err error) {
	seen := map[string]struct{}{}
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		switch path {
		case "stdout":
			terminal = append(terminal, os.Stdout)
		case "stderr":
			terminal = append(terminal, os.Stderr)
		default:
			file, err := openLogFile(path)
			if err != nil {
				return nil, nil, err
			}
			files = append(files, file)
		}
	}
	return terminal, files, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func combine(writers []io.Writer) io.Writer {
	switch len(writers) {
	case 0:
		return nil
	case 1:
		return writers[0]
	default:
		return io.MultiWriter(writers...)
	}
}

// fanoutHandler passes each record to every handler enabled for its level.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
