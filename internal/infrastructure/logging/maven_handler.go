package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

var levelColors = map[slog.Level]string{
	slog.LevelDebug: ansiGray,
	slog.LevelInfo:  ansiCyan,
	slog.LevelWarn:  ansiYellow,
	slog.LevelError: ansiRed,
}

// MavenHandler is a slog.Handler that formats records Maven-style:
//
//	[LEVEL] [system] [HH:MM:SS] message key=value key=value
//
// The "system" attribute, when set via WithAttrs, is promoted into the
// bracketed prefix instead of trailing as a key=value pair.
type MavenHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Level
	system string
	color  bool
	attrs  []slog.Attr
}

// NewMavenHandler builds the handler. Colors engage only when w is a
// real terminal.
func NewMavenHandler(w io.Writer, opts *slog.HandlerOptions) *MavenHandler {
	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}
	return &MavenHandler{
		w:     w,
		mu:    &sync.Mutex{},
		level: level,
		color: writerIsTerminal(w),
	}
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *MavenHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *MavenHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	h.paint(&b, levelColors[r.Level], "["+levelName(r.Level)+"]")
	if h.system != "" {
		b.WriteString(" [" + h.system + "]")
	}
	h.paint(&b, ansiGray, " ["+r.Time.Format("15:04:05")+"]")
	b.WriteString(" ")
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// paint writes s wrapped in the given ANSI code when colors are on.
func (h *MavenHandler) paint(b *strings.Builder, code, s string) {
	if h.color && code != "" {
		b.WriteString(code)
		b.WriteString(s)
		b.WriteString(ansiReset)
		return
	}
	b.WriteString(s)
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Key == "system" {
		return // promoted into the prefix
	}
	fmt.Fprintf(b, " %s=%v", a.Key, a.Value.Any())
}

func (h *MavenHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		if a.Key == "system" {
			next.system = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup is a no-op; the flat prefix format has no group nesting.
func (h *MavenHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *MavenHandler) clone() *MavenHandler {
	next := *h
	next.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+4)
	copy(next.attrs, h.attrs)
	return &next
}

func levelName(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}
