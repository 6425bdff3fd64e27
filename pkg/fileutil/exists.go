package fileutil

import (
	"os"
)

// Exists reports whether path exists. Errors other than not-exist count as existing
// so callers do not silently overwrite something they cannot stat.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !os.IsNotExist(err)
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DirHasEntries reports whether path is a directory containing at least one entry.
func DirHasEntries(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}
