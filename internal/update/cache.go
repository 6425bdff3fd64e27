package update

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/pkg/fileutil"
)

// CacheFileName is the cache file kata's status line reads.
const CacheFileName = "kata-update-check.json"

// CachePath returns ~/.claude/cache/kata-update-check.json. The cache lives
// under the home config directory for every install scope.
func CachePath() (string, error) {
	dir, err := paths.HomeClaudeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache", CacheFileName), nil
}

// WriteCache atomically writes res to path, creating its directory.
func WriteCache(path string, res Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating cache directory for %s", path)
	}
	return errors.Wrap(fileutil.AtomicWriteJSON(path, res), "writing update cache")
}

// ReadCache reads a cache file. It returns nil, nil when the file does not
// exist yet.
func ReadCache(path string) (*Result, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading update cache")
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "parsing update cache")
	}
	return &res, nil
}
