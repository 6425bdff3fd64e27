package install

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/internal/settings"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.NewContext(context.Background(), logging.ForTest(t))
}

// distribution writes a small installable tree and returns its root.
func distribution(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"package.json":               `{"name":"@gannonh/kata","version":"1.2.3"}`,
		"CHANGELOG.md":               "# Changelog\nsee ~/.claude/kata/\n",
		"agents/kata-planner.md":     "Read @~/.claude/kata/workflows/plan.md\n",
		"agents/notes.txt":           "not an agent",
		"skills/kata-plan/SKILL.md":  "---\nname: kata-plan\n---\nUse @~/.claude/kata/refs/a.md\n",
		"skills/kata-plan/refs/a.md": "ref",
		"commands/kata/help.md":      "---\nname: kata:help\n---\nhelp\n",
		"hooks/statusline.js":        "// statusline",
		"hooks/kata-check-update.js": "// legacy",
		"kata/workflows/plan.md":     "plan with ~/.claude/kata/templates\n",
		"kata/templates/summary.md":  "summary",
	})
	return src
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func loadSettings(t *testing.T, dir *paths.ConfigDir) settings.Settings {
	t.Helper()
	s, err := settings.Load(testContext(t), dir.SettingsPath())
	require.NoError(t, err)
	return s
}

func TestInstall_LocalIntoEmptyProject(t *testing.T) {
	src := distribution(t)
	project := t.TempDir()

	rep, err := New(Options{Scope: paths.ScopeLocal, SourceDir: src, ProjectDir: project}).Install(testContext(t))
	require.NoError(t, err)

	claude := filepath.Join(project, ".claude")
	require.Equal(t, claude, rep.Target.Dir)
	require.Equal(t, "1.2.3", rep.Version)
	require.Empty(t, rep.Failed)
	require.ElementsMatch(t,
		[]string{"kata", "agents", "skills", "CHANGELOG.md", "VERSION", "commands/kata", "hooks"},
		rep.Installed)

	for _, sub := range []string{"agents", "skills", "commands", "hooks"} {
		info, err := os.Stat(filepath.Join(claude, sub))
		require.NoError(t, err, sub)
		require.True(t, info.IsDir(), sub)
	}

	require.Equal(t, "Read @./.claude/kata/workflows/plan.md\n", readFile(t, filepath.Join(claude, "agents", "kata-planner.md")))
	require.NoFileExists(t, filepath.Join(claude, "agents", "notes.txt"))
	require.Equal(t, "---\nname: kata-plan\n---\nUse @./.claude/kata/refs/a.md\n",
		readFile(t, filepath.Join(claude, "skills", "kata-plan", "SKILL.md")))
	require.Equal(t, "plan with ./.claude/kata/templates\n", readFile(t, filepath.Join(claude, "kata", "workflows", "plan.md")))
	require.FileExists(t, filepath.Join(claude, "commands", "kata", "help.md"))
	require.FileExists(t, filepath.Join(claude, "hooks", "statusline.js"))

	// The changelog is copied verbatim.
	require.Equal(t, "# Changelog\nsee ~/.claude/kata/\n", readFile(t, filepath.Join(claude, "kata", "CHANGELOG.md")))
	require.Equal(t, "1.2.3", readFile(t, filepath.Join(claude, "kata", "VERSION")))

	s := loadSettings(t, rep.Target)
	require.Equal(t, 1, s.HookCount(settings.EventSessionStart))
	line, ok := s.StatusLine()
	require.True(t, ok)
	require.Equal(t, "node .claude/hooks/statusline.js", line)
	require.True(t, rep.HookAdded)
	require.Equal(t, StatusLineInstalled, rep.StatusLine)
}

func TestInstall_Twice(t *testing.T) {
	src := distribution(t)
	project := t.TempDir()
	inst := New(Options{Scope: paths.ScopeLocal, SourceDir: src, ProjectDir: project})

	_, err := inst.Install(testContext(t))
	require.NoError(t, err)
	rep, err := inst.Install(testContext(t))
	require.NoError(t, err)

	require.False(t, rep.HookAdded)
	require.Equal(t, StatusLineKept, rep.StatusLine)
	require.Equal(t, 1, loadSettings(t, rep.Target).HookCount(settings.EventSessionStart))
}

func TestInstall_LegacyUpdateHookIsNotDuplicated(t *testing.T) {
	src := distribution(t)
	project := t.TempDir()
	writeFiles(t, project, map[string]string{
		".claude/settings.json": `{"hooks":{"SessionStart":[{"hooks":[{"type":"command","command":"node .claude/hooks/kata-check-update.js"}]}]}}`,
	})

	rep, err := New(Options{Scope: paths.ScopeLocal, SourceDir: src, ProjectDir: project}).Install(testContext(t))
	require.NoError(t, err)
	require.False(t, rep.HookAdded)
	require.Equal(t, 1, loadSettings(t, rep.Target).HookCount(settings.EventSessionStart))
}

func TestInstall_PreservesUserContent(t *testing.T) {
	src := distribution(t)
	project := t.TempDir()
	writeFiles(t, project, map[string]string{
		".claude/agents/my-agent.md":        "mine",
		".claude/agents/kata-retired.md":    "old",
		".claude/agents/gsd-retired.md":     "older",
		".claude/skills/my-skill/SKILL.md":  "mine",
		".claude/skills/kata-retired/a.md":  "old",
		".claude/skills/kata-plan/stale.md": "stale",
		".claude/commands/mine/go.md":       "mine",
		".claude/commands/kata/retired.md":  "old",
		".claude/hooks/user.sh":             "mine",
	})

	_, err := New(Options{Scope: paths.ScopeLocal, SourceDir: src, ProjectDir: project}).Install(testContext(t))
	require.NoError(t, err)

	claude := filepath.Join(project, ".claude")
	for _, kept := range []string{
		"agents/my-agent.md",
		"skills/my-skill/SKILL.md",
		"commands/mine/go.md",
		"hooks/user.sh",
	} {
		require.FileExists(t, filepath.Join(claude, kept))
	}
	for _, gone := range []string{
		"agents/kata-retired.md",
		"agents/gsd-retired.md",
		"skills/kata-retired",
		"skills/kata-plan/stale.md",
		"commands/kata/retired.md",
	} {
		require.NoFileExists(t, filepath.Join(claude, gone))
		require.NoDirExists(t, filepath.Join(claude, gone))
	}
}

func TestInstall_RemovesOrphansAndDeprecatedHooks(t *testing.T) {
	src := distribution(t)
	project := t.TempDir()
	writeFiles(t, project, map[string]string{
		".claude/hooks/gsd-notify.sh": "#!/bin/sh",
		".claude/hooks/kata-lint.js":  "// lint",
		".claude/settings.json":       `{
  "model": "opus",
  "hooks": {
    "Stop": [
      {"hooks": [{"type": "command", "command": "bash ~/.claude/hooks/gsd-notify.sh"}]},
      {"hooks": [{"type": "command", "command": "say done"}]}
    ]
  }
}`,
	})

	rep, err := New(Options{Scope: paths.ScopeLocal, SourceDir: src, ProjectDir: project}).Install(testContext(t))
	require.NoError(t, err)

	require.ElementsMatch(t, OrphanFiles, rep.Orphans)
	require.NoFileExists(t, filepath.Join(project, ".claude", "hooks", "gsd-notify.sh"))
	require.NoFileExists(t, filepath.Join(project, ".claude", "hooks", "kata-lint.js"))
	require.Equal(t, 1, rep.RemovedHooks)

	s := loadSettings(t, rep.Target)
	require.Equal(t, 1, s.HookCount(settings.EventStop))
	require.Equal(t, "opus", s["model"])
	require.NotContains(t, readFile(t, rep.Target.SettingsPath()), "gsd-notify.sh")
}

func TestInstall_CustomConfigDir(t *testing.T) {
	src := distribution(t)
	dir := filepath.Join(t.TempDir(), "claude-work")

	rep, err := New(Options{Scope: paths.ScopeGlobal, ConfigDir: dir, SourceDir: src}).Install(testContext(t))
	require.NoError(t, err)
	require.True(t, rep.Target.Custom)

	slashed := filepath.ToSlash(dir)
	require.Equal(t, "Read @"+slashed+"/kata/workflows/plan.md\n", readFile(t, filepath.Join(dir, "agents", "kata-planner.md")))
	require.Equal(t, `kata check-update --config-dir "`+slashed+`"`, UpdateHookCommand(rep.Target))

	line, ok := loadSettings(t, rep.Target).StatusLine()
	require.True(t, ok)
	require.Equal(t, `node "`+slashed+`/hooks/statusline.js"`, line)
}

func TestInstall_DefaultGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(paths.EnvConfigDir, "")
	src := distribution(t)

	rep, err := New(Options{Scope: paths.ScopeGlobal, SourceDir: src}).Install(testContext(t))
	require.NoError(t, err)
	require.False(t, rep.Target.Custom)

	claude := filepath.Join(home, ".claude")
	require.Equal(t, claude, rep.Target.Dir)
	// The default prefix needs no rewrite.
	require.Equal(t, "Read @~/.claude/kata/workflows/plan.md\n", readFile(t, filepath.Join(claude, "agents", "kata-planner.md")))
	require.Equal(t, "kata check-update", UpdateHookCommand(rep.Target))

	line, _ := loadSettings(t, rep.Target).StatusLine()
	require.Equal(t, `node "$HOME/.claude/hooks/statusline.js"`, line)
}

type fakePrompter struct {
	replace bool
	err     error
	asked   string
}

func (f *fakePrompter) StatusLine(existing string) (bool, error) {
	f.asked = existing
	return f.replace, f.err
}

func TestInstall_StatusLine(t *testing.T) {
	const existing = "bash ~/my-status.sh"
	tests := []struct {
		name     string
		force    bool
		prompter *fakePrompter
		want     StatusLineAction
		wantLine string
	}{
		{name: "non-interactive keeps existing", want: StatusLineSkipped, wantLine: existing},
		{name: "force replaces", force: true, want: StatusLineReplaced, wantLine: "node .claude/hooks/statusline.js"},
		{name: "prompt replace", prompter: &fakePrompter{replace: true}, want: StatusLineReplaced, wantLine: "node .claude/hooks/statusline.js"},
		{name: "prompt keep", prompter: &fakePrompter{}, want: StatusLineKept, wantLine: existing},
		{name: "prompt input closed", prompter: &fakePrompter{err: errors.New("input closed")}, want: StatusLineKept, wantLine: existing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := distribution(t)
			project := t.TempDir()
			writeFiles(t, project, map[string]string{
				".claude/settings.json": `{"statusLine":{"type":"command","command":"` + existing + `"}}`,
			})

			opts := Options{Scope: paths.ScopeLocal, SourceDir: src, ProjectDir: project, ForceStatusline: tt.force}
			if tt.prompter != nil {
				opts.Interactive = true
				opts.Prompter = tt.prompter
			}
			rep, err := New(opts).Install(testContext(t))
			require.NoError(t, err)
			require.Equal(t, tt.want, rep.StatusLine)

			line, ok := loadSettings(t, rep.Target).StatusLine()
			require.True(t, ok)
			require.Equal(t, tt.wantLine, line)
			if tt.prompter != nil {
				require.Equal(t, existing, tt.prompter.asked)
			}
		})
	}
}

func TestInstall_Incomplete(t *testing.T) {
	src := distribution(t)
	require.NoError(t, os.RemoveAll(filepath.Join(src, "commands", "kata")))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "commands", "kata"), 0o755))
	require.NoError(t, os.RemoveAll(filepath.Join(src, "hooks")))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "hooks", "lib"), 0o755))
	project := t.TempDir()

	rep, err := New(Options{Scope: paths.ScopeLocal, SourceDir: src, ProjectDir: project}).Install(testContext(t))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIncomplete), "got %v", err)
	require.ElementsMatch(t, []string{"commands/kata", "hooks"}, rep.Failed)
	require.True(t, strings.Contains(err.Error(), "commands/kata, hooks"), err.Error())

	// Components that succeed are still installed; settings are not touched.
	require.FileExists(t, filepath.Join(project, ".claude", "agents", "kata-planner.md"))
	require.NoFileExists(t, filepath.Join(project, ".claude", "settings.json"))
}

func TestInstall_MissingSource(t *testing.T) {
	_, err := New(Options{Scope: paths.ScopeLocal, SourceDir: filepath.Join(t.TempDir(), "nope"), ProjectDir: t.TempDir()}).Install(testContext(t))
	require.Error(t, err)
}

func TestInstall_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := New(Options{Scope: paths.ScopeLocal, SourceDir: distribution(t), ProjectDir: t.TempDir()}).Install(ctx)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
