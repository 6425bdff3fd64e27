package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gannonh/kata/internal/errors"
)

// execute runs the root command with args and returns its standard output.
// Flag variables are package state, so they are reset first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, stderr bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	if stderr.Len() > 0 {
		t.Logf("stderr:\n%s", stderr.String())
	}
	return out.String(), err
}

func resetFlags() {
	verbosity, quiet, logFormat, logFile = 0, false, "text", ""
	buildSource, buildDist, buildManifest, buildFormat = "", "", "", "text"
	installGlobal, installLocal, installConfigDir, installSource, installForceStatusline = false, false, "", "", false
	checkForeground, checkLocal, checkConfigDir = false, false, ""
	_ = genDocCmd.Flags().Set("dir", "")
	_ = genDocCmd.Flags().Set("format", "markdown")
	cfg = nil
	stdin = strings.NewReader("")
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func wantExitCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with exit code %d, got nil", code)
	}
	if got := errors.ExitCode(err); got != code {
		t.Errorf("ExitCode(%v) = %d, want %d", err, got, code)
	}
}
