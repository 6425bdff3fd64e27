package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ScopeKeys are attributes rendered as a bracketed prefix ahead of the
// message instead of as key=value pairs, joined in the order they are added:
//
//	9:41PM INFO  [plugin] copied path=agents files=4
//	9:41PM ERROR [local/hooks] failed to install error="hooks is empty"
var ScopeKeys = []string{"scope", "target", "component"}

// PathKey values are highlighted so copied and skipped paths stand out in
// a long build.
const PathKey = "path"

// Handler is a text handler for progress output on a terminal. It is
// colorized when the writer supports it.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	scopes []string
	groups []string
	colors *palette
	color  bool
}

type palette struct {
	time, trace, debug, info, warn, error, key, scope, path *color.Color
}

func newPalette() *palette {
	return &palette{
		time:  color.New(color.FgHiBlack),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		error: color.New(color.FgRed, color.Bold),
		key:   color.New(color.FgCyan),
		scope: color.New(color.FgBlue),
		path:  color.New(color.FgHiWhite),
	}
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{
		opts:   *opts,
		out:    out,
		mu:     &sync.Mutex{},
		colors: newPalette(),
		color:  SupportsColor(out),
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle writes one line: time, level, scope prefix, message, attributes.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	scopes := h.scopes
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if s, ok := h.scopeValue(a); ok {
			scopes = append(scopes[:len(scopes):len(scopes)], s)
			return true
		}
		attrs = append(attrs, a)
		return true
	})

	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(h.paint(h.colors.time, r.Time.Format(time.Kitchen)))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", h.level(r.Level))
	if len(scopes) > 0 {
		b.WriteString(h.paint(h.colors.scope, "["+strings.Join(scopes, "/")+"]"))
		b.WriteByte(' ')
	}
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		h.appendAttr(&b, a)
	}
	for _, a := range attrs {
		h.appendAttr(&b, a)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// level names LevelTrace, which slog would print as DEBUG-4.
func (h *Handler) level(l slog.Level) string {
	var name string
	var c *color.Color
	switch {
	case l >= slog.LevelError:
		name, c = l.String(), h.colors.error
	case l >= slog.LevelWarn:
		name, c = l.String(), h.colors.warn
	case l >= slog.LevelInfo:
		name, c = l.String(), h.colors.info
	case l > LevelTrace:
		name, c = l.String(), h.colors.debug
	default:
		name, c = "TRACE", h.colors.trace
	}
	return h.paint(c, name)
}

// scopeValue reports whether a is an ungrouped scope attribute.
func (h *Handler) scopeValue(a slog.Attr) (string, bool) {
	if len(h.groups) > 0 {
		return "", false
	}
	for _, k := range ScopeKeys {
		if a.Key == k {
			s := a.Value.Resolve().String()
			return s, s != ""
		}
	}
	return "", false
}

func (h *Handler) appendAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}

	value := fmt.Sprint(a.Value.Any())
	if strings.ContainsAny(value, " \t") {
		value = fmt.Sprintf("%q", value)
	}
	if a.Key == PathKey {
		value = h.paint(h.colors.path, value)
	}

	fmt.Fprintf(b, " %s=%s", h.paint(h.colors.key, key), value)
}

func (h *Handler) paint(c *color.Color, s string) string {
	if !h.color {
		return s
	}
	return c.Sprint(s)
}

// WithAttrs returns a Handler carrying attrs. Scope attributes join the
// prefix.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := *h
	newH.attrs = append([]slog.Attr(nil), h.attrs...)
	newH.scopes = append([]string(nil), h.scopes...)
	for _, a := range attrs {
		if s, ok := h.scopeValue(a); ok {
			newH.scopes = append(newH.scopes, s)
			continue
		}
		newH.attrs = append(newH.attrs, a)
	}
	return &newH
}

// WithGroup returns a Handler with the given group name. Groups are
// rendered as dotted key prefixes.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.groups = append(append([]string(nil), h.groups...), name)
	return &newH
}
