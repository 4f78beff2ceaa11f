package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/roast/internal/ui/output"
	"go.trai.ch/roast/internal/ui/style"
)

// subjectKeys name the attributes that identify what a line is about.
// Their values follow the message without a key.
var subjectKeys = []string{"destination", "path"}

// PrettyHandler is a slog.Handler writing one colored line per record:
// the level icon and message, the subject attribute, then the remaining
// attributes as faint key=value pairs.
type PrettyHandler struct {
	mu     *sync.Mutex
	out    *termenv.Output
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		mu:    &sync.Mutex{},
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r as a single line.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := levelStyle(r.Level)

	attrs := slices.Clone(h.attrs)
	r.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, h.qualify(attr))
		return true
	})

	var b strings.Builder
	if icon != "" {
		b.WriteString(icon + " ")
	}
	b.WriteString(h.out.String(r.Message).Foreground(color).String())

	subject, rest := splitSubject(attrs)
	if subject != "" {
		b.WriteString(" " + h.out.String(subject).Bold().String())
	}
	for _, attr := range rest {
		b.WriteString(" " + h.out.String(attr.Key+"="+attr.Value.String()).Faint().String())
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(b.String())
	return err
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clone(h.attrs)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(attr))
	}
	return &clone
}

// WithGroup returns a Handler that prefixes later attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *PrettyHandler) qualify(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()
	if h.prefix != "" {
		attr.Key = h.prefix + attr.Key
	}
	return attr
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning, termenv.RGBColor(string(style.Yellow))
	default:
		return "", termenv.RGBColor(string(style.Roast))
	}
}

// splitSubject removes the first subject attribute from attrs and returns its value.
func splitSubject(attrs []slog.Attr) (string, []slog.Attr) {
	for i, attr := range attrs {
		if slices.Contains(subjectKeys, attr.Key) {
			return attr.Value.String(), slices.Delete(slices.Clone(attrs), i, i+1)
		}
	}
	return "", attrs
}
