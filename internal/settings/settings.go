// Package settings edits a Claude settings.json file while preserving every
// key it does not manage.
package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
	"github.com/gannonh/kata/pkg/fileutil"
)

// Hook event names.
const (
	EventSessionStart = "SessionStart"
	EventStop         = "Stop"
)

// Settings is a decoded settings.json document.
type Settings map[string]any

// Load reads the settings file at path. A missing or unparseable file
// yields an empty document; the parse failure is logged, not returned.
func Load(ctx context.Context, path string) (Settings, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil || s == nil {
		logging.FromContext(ctx).Warn("ignoring unreadable settings", "path", path, "error", err)
		return Settings{}, nil
	}
	return s, nil
}

// Save writes s to path atomically with 2-space indentation and a trailing
// newline, creating the parent directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return errors.Wrapf(fileutil.AtomicWriteJSON(path, map[string]any(s)), "writing %s", path)
}

// hooks returns the hooks object, creating it when create is set. A
// non-object value is replaced only when creating.
func (s Settings) hooks(create bool) map[string]any {
	h, ok := s["hooks"].(map[string]any)
	if !ok && create {
		h = map[string]any{}
		s["hooks"] = h
	}
	return h
}

// commands returns the command strings of a hook entry
// ({"hooks":[{"type":"command","command":"..."}]}).
func commands(entry any) []string {
	m, ok := entry.(map[string]any)
	if !ok {
		return nil
	}
	list, _ := m["hooks"].([]any)
	var out []string
	for _, h := range list {
		hm, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if c, ok := hm["command"].(string); ok {
			out = append(out, c)
		}
	}
	return out
}

func mentions(entry any, substrs []string) bool {
	for _, c := range commands(entry) {
		for _, sub := range substrs {
			if strings.Contains(c, sub) {
				return true
			}
		}
	}
	return false
}

// RemoveHooks drops, under every event, each hook entry with a command
// containing any of patterns. It returns the number of entries removed.
func (s Settings) RemoveHooks(patterns []string) int {
	h := s.hooks(false)
	removed := 0
	for event, v := range h {
		entries, ok := v.([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(entries))
		for _, e := range entries {
			if mentions(e, patterns) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		h[event] = kept
	}
	return removed
}

// EnsureHook appends a command hook under event unless an existing entry
// already mentions one of markers. It reports whether an entry was added.
func (s Settings) EnsureHook(event string, markers []string, command string) bool {
	h := s.hooks(true)
	entries, _ := h[event].([]any)
	for _, e := range entries {
		if mentions(e, markers) {
			return false
		}
	}

	h[event] = append(entries, map[string]any{
		"hooks": []any{
			map[string]any{"type": "command", "command": command},
		},
	})
	return true
}

// HookCount returns the number of entries under event.
func (s Settings) HookCount(event string) int {
	entries, _ := s.hooks(false)[event].([]any)
	return len(entries)
}

// StatusLine returns a description of the configured status line and
// whether one is configured at all.
func (s Settings) StatusLine() (string, bool) {
	v, ok := s["statusLine"]
	if !ok || v == nil {
		return "", false
	}
	if m, ok := v.(map[string]any); ok {
		for _, key := range []string{"command", "url"} {
			if c, ok := m[key].(string); ok && c != "" {
				return c, true
			}
		}
	}
	return "(custom)", true
}

// SetStatusLine replaces the status line with a command.
func (s Settings) SetStatusLine(command string) {
	s["statusLine"] = map[string]any{"type": "command", "command": command}
}
