package commands

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/internal/update"
)

func fakeRegistry(t *testing.T, latest string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"version":"` + latest + `"}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("KATA_UPDATE_REGISTRY", srv.URL)
}

func readCache(t *testing.T, home string) *update.Result {
	t.Helper()
	res, err := update.ReadCache(filepath.Join(home, ".claude", "cache", update.CacheFileName))
	if err != nil {
		t.Fatal(err)
	}
	if res == nil {
		t.Fatal("cache file was not written")
	}
	return res
}

func TestCheckUpdateCommand_Global(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(paths.EnvConfigDir, "")
	t.Chdir(t.TempDir())
	writeTree(t, home, map[string]string{".claude/kata/VERSION": "1.0.0"})
	fakeRegistry(t, "1.1.0")

	if _, err := execute(t, "check-update", "--foreground"); err != nil {
		t.Fatalf("check-update: %v", err)
	}

	res := readCache(t, home)
	if !res.UpdateAvailable || res.Installed != "1.0.0" || res.Latest != "1.1.0" {
		t.Errorf("cache = %+v", res)
	}
}

func TestCheckUpdateCommand_DetectsLocalInstall(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(paths.EnvConfigDir, "")
	writeTree(t, home, map[string]string{".claude/kata/VERSION": "0.9.0"})

	project := t.TempDir()
	writeTree(t, project, map[string]string{
		".claude/commands/kata/help.md": "help",
		".claude/kata/VERSION":          "1.1.0",
	})
	t.Chdir(project)
	fakeRegistry(t, "1.1.0")

	if _, err := execute(t, "check-update", "--foreground"); err != nil {
		t.Fatalf("check-update: %v", err)
	}

	// The cache always lives under the home directory.
	res := readCache(t, home)
	if res.UpdateAvailable || res.Installed != "1.1.0" {
		t.Errorf("cache = %+v, want the local install's version", res)
	}
}

func TestCheckUpdateCommand_ConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"kata/VERSION": "1.0.0"})
	fakeRegistry(t, "1.0.0")

	if _, err := execute(t, "check-update", "--foreground", "--config-dir", dir); err != nil {
		t.Fatalf("check-update: %v", err)
	}

	res := readCache(t, home)
	if res.UpdateAvailable || res.Installed != "1.0.0" {
		t.Errorf("cache = %+v", res)
	}
}
