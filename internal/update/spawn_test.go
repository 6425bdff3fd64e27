//go:build unix

package update

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSpawn(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")

	if err := Spawn("/bin/sh", "-c", "touch "+marker); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(marker); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("spawned process did not run")
}

func TestSpawn_MissingExecutable(t *testing.T) {
	if err := Spawn(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing executable")
	}
}
