package update

import (
	"path/filepath"

	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/pkg/fileutil"
)

// IsLocalInstall reports whether projectDir carries a local kata install,
// detected by <projectDir>/.claude/commands/kata.
func IsLocalInstall(projectDir string) bool {
	return fileutil.IsDir(filepath.Join(projectDir, paths.DefaultConfigRoot, "commands", "kata"))
}

// VersionPath returns the VERSION file of the install at dir.
func VersionPath(dir *paths.ConfigDir) string {
	return dir.Join("kata", "VERSION")
}
