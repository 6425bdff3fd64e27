package install

import (
	"os"
	"path/filepath"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/pkg/fileutil"
)

// ErrNoSource is returned when no distribution tree can be found.
var ErrNoSource = errors.New("no kata distribution found")

// LooksLikeDistribution reports whether dir holds an installable tree: a
// package.json next to at least one of agents, skills or commands.
func LooksLikeDistribution(dir string) bool {
	if !fileutil.Exists(filepath.Join(dir, "package.json")) {
		return false
	}
	for _, sub := range []string{"agents", "skills", "commands"} {
		if fileutil.IsDir(filepath.Join(dir, sub)) {
			return true
		}
	}
	return false
}

// ResolveSource returns the distribution to install from.
//
// An explicit directory must look like a distribution. Otherwise the tree
// the running executable was shipped in (<root>/bin/kata) is tried, then
// the working directory.
func ResolveSource(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", errors.Wrapf(err, "resolving %s", explicit)
		}
		if !LooksLikeDistribution(abs) {
			return "", errors.Wrapf(ErrNoSource, "%s", abs)
		}
		return abs, nil
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Dir(filepath.Dir(exe)))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, wd)
	}
	for _, dir := range candidates {
		if LooksLikeDistribution(dir) {
			return dir, nil
		}
	}
	return "", ErrNoSource
}
