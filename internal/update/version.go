package update

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Newer reports whether latest is a newer release than installed.
//
// Both are compared as semantic versions (a leading "v" is tolerated).
// When either does not parse, any difference counts as an update. An
// unknown latest version is never newer.
func Newer(installed, latest string) bool {
	if latest == "" || latest == UnknownLatest {
		return false
	}
	iv, ierr := parse(installed)
	lv, lerr := parse(latest)
	if ierr != nil || lerr != nil {
		return installed != latest
	}
	return iv.LessThan(lv)
}

func parse(v string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(v, "v"))
}
