package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

var levelColor = map[slog.Level]*color.Color{
	LevelTrace: color.New(color.FgHiBlack),
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

var levelName = map[slog.Level]string{
	LevelTrace: "TRCE",
	LevelDebug: "DBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "CRIT",
}

// terminalHandler renders records as "LVL[time] msg key=value ...",
// colorizing the level when the underlying writer is a real terminal.
// It is the console counterpart of go-ethereum's own TerminalHandler.
type terminalHandler struct {
	mu      sync.Mutex
	w       io.Writer
	level   slog.Level
	colored bool
	attrs   []slog.Attr
}

// NewTerminalHandler wraps w, auto-detecting ANSI color support via
// go-isatty/go-colorable.
func NewTerminalHandler(w io.Writer, level slog.Level) slog.Handler {
	colored := false
	if f, ok := w.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if colored {
			w = colorable.NewColorable(f)
		}
	}
	return &terminalHandler{w: w, level: level, colored: colored}
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

func (h *terminalHandler) WithGroup(string) slog.Handler { return h }

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	lvl := levelName[r.Level]
	if lvl == "" {
		lvl = r.Level.String()
	}
	if h.colored {
		if c, ok := levelColor[r.Level]; ok {
			lvl = c.Sprint(lvl)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(h.w, "%s[%s] %s", lvl, r.Time.Format("01-02|15:04:05.000"), r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, " %s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	fmt.Fprintln(h.w)
	return nil
}

// FileHandlerConfig configures the optional rotating file sink.
type FileHandlerConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewRotatingFileHandler emits JSON-lines records through a
// lumberjack-rotated file.
func NewRotatingFileHandler(cfg FileHandlerConfig, level slog.Level) slog.Handler {
	w := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxOr(cfg.MaxSizeMB, 100),
		MaxBackups: cfg.MaxBackups,
		MaxAge:     maxOr(cfg.MaxAgeDays, 7),
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

func maxOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// multiHandler fans a record out to several handlers, used to run the
// terminal handler and the rotating file handler side by side.
type multiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler combines handlers, e.g. console + rotating file.
func NewMultiHandler(handlers ...slog.Handler) slog.Handler {
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		cp[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: cp}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	cp := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		cp[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: cp}
}
