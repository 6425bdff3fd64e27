package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gannonh/kata/internal/logging"
)

var updateMarkers = []string{"kata check-update", "kata-check-update"}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.NewContext(context.Background(), logging.ForTest(t))
}

func TestLoad(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		s, err := Load(ctx, filepath.Join(dir, "absent.json"))
		require.NoError(t, err)
		require.Empty(t, s)
	})

	t.Run("unparseable", func(t *testing.T) {
		p := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))
		s, err := Load(ctx, p)
		require.NoError(t, err)
		require.NotNil(t, s)
		require.Empty(t, s)
	})

	t.Run("non-object", func(t *testing.T) {
		p := filepath.Join(dir, "array.json")
		require.NoError(t, os.WriteFile(p, []byte("null"), 0o644))
		s, err := Load(ctx, p)
		require.NoError(t, err)
		require.NotNil(t, s)
	})

	t.Run("preserves unknown keys", func(t *testing.T) {
		p := filepath.Join(dir, "settings.json")
		require.NoError(t, os.WriteFile(p, []byte(`{"model":"opus","permissions":{"allow":["Bash"]}}`), 0o644))
		s, err := Load(ctx, p)
		require.NoError(t, err)
		s.EnsureHook(EventSessionStart, updateMarkers, "kata check-update")
		require.NoError(t, Save(p, s))

		back, err := Load(ctx, p)
		require.NoError(t, err)
		require.Equal(t, "opus", back["model"])
		require.Equal(t, map[string]any{"allow": []any{"Bash"}}, back["permissions"])
	})
}

func TestSave_Format(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "settings.json")
	require.NoError(t, Save(p, Settings{"b": 1, "a": "x"}))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": \"x\",\n  \"b\": 1\n}\n", string(data))
}

func TestEnsureHook_Idempotent(t *testing.T) {
	s := Settings{}

	require.True(t, s.EnsureHook(EventSessionStart, updateMarkers, "kata check-update"))
	require.False(t, s.EnsureHook(EventSessionStart, updateMarkers, "kata check-update"))
	require.Equal(t, 1, s.HookCount(EventSessionStart))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"hooks":{"SessionStart":[{"hooks":[{"type":"command","command":"kata check-update"}]}]}}`, string(data))
}

func TestEnsureHook_RecognizesLegacyHook(t *testing.T) {
	s := Settings{"hooks": map[string]any{
		EventSessionStart: []any{
			map[string]any{"hooks": []any{
				map[string]any{"type": "command", "command": `node "$HOME/.claude/hooks/kata-check-update.js"`},
			}},
		},
	}}

	require.False(t, s.EnsureHook(EventSessionStart, updateMarkers, "kata check-update"))
	require.Equal(t, 1, s.HookCount(EventSessionStart))
}

func TestEnsureHook_KeepsOtherEntries(t *testing.T) {
	s := Settings{"hooks": map[string]any{
		EventSessionStart: []any{
			map[string]any{"hooks": []any{map[string]any{"type": "command", "command": "echo hello"}}},
		},
		EventStop: []any{"opaque"},
	}}

	require.True(t, s.EnsureHook(EventSessionStart, updateMarkers, "kata check-update"))
	require.Equal(t, 2, s.HookCount(EventSessionStart))
	require.Equal(t, 1, s.HookCount(EventStop))
}

func TestRemoveHooks(t *testing.T) {
	entry := func(cmd string) map[string]any {
		return map[string]any{"hooks": []any{map[string]any{"type": "command", "command": cmd}}}
	}
	s := Settings{"hooks": map[string]any{
		EventStop:         []any{entry("bash ~/.claude/hooks/gsd-notify.sh"), entry("say done")},
		EventSessionStart: []any{entry("~/.claude/hooks/gsd-notify.sh start")},
		"Other":           "not a list",
	}}

	require.Equal(t, 2, s.RemoveHooks([]string{"gsd-notify.sh"}))
	require.Equal(t, 1, s.HookCount(EventStop))
	require.Equal(t, 0, s.HookCount(EventSessionStart))
	require.Equal(t, "not a list", s["hooks"].(map[string]any)["Other"])

	// A second run finds nothing.
	require.Zero(t, s.RemoveHooks([]string{"gsd-notify.sh"}))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(data), "gsd-notify.sh"))
}

func TestRemoveHooks_NoHooks(t *testing.T) {
	require.Zero(t, Settings{}.RemoveHooks([]string{"x"}))
}

func TestStatusLine(t *testing.T) {
	s := Settings{}
	_, ok := s.StatusLine()
	require.False(t, ok)

	s.SetStatusLine(`node "$HOME/.claude/hooks/statusline.js"`)
	got, ok := s.StatusLine()
	require.True(t, ok)
	require.Equal(t, `node "$HOME/.claude/hooks/statusline.js"`, got)

	s["statusLine"] = map[string]any{"type": "web", "url": "http://x"}
	got, _ = s.StatusLine()
	require.Equal(t, "http://x", got)

	s["statusLine"] = "weird"
	got, ok = s.StatusLine()
	require.True(t, ok)
	require.Equal(t, "(custom)", got)
}
