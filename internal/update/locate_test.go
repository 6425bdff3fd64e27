package update

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gannonh/kata/internal/paths"
)

func TestIsLocalInstall(t *testing.T) {
	project := t.TempDir()
	if IsLocalInstall(project) {
		t.Error("empty project reported as local install")
	}

	if err := os.MkdirAll(filepath.Join(project, ".claude", "commands", "kata"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !IsLocalInstall(project) {
		t.Error("project with .claude/commands/kata not reported as local install")
	}
}

func TestVersionPath(t *testing.T) {
	dir := &paths.ConfigDir{Scope: paths.ScopeLocal, Dir: filepath.Join("proj", ".claude")}
	want := filepath.Join("proj", ".claude", "kata", "VERSION")
	if got := VersionPath(dir); got != want {
		t.Errorf("VersionPath() = %q, want %q", got, want)
	}
}
