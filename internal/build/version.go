package build

import (
	"encoding/json"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/pkg/fileutil"
)

// ReadVersion returns the version field of <source>/package.json.
func ReadVersion(source string) (string, error) {
	p := filepath.Join(source, "package.json")
	data, err := fileutil.ReadFileWithLimit(p)
	if err != nil {
		return "", errors.Wrap(err, "reading package.json")
	}

	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", errors.Wrapf(err, "parsing %s", p)
	}
	if pkg.Version == "" {
		return "", errors.Newf("%s has no version", p)
	}
	return pkg.Version, nil
}

// IsSemver reports whether v is a strict semantic version.
func IsSemver(v string) bool {
	_, err := semver.StrictNewVersion(v)
	return err == nil
}
