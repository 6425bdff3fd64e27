package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/gannonh/kata/internal/errors"
)

// AppName names the kata config directory under ConfigHome.
const AppName = "kata"

// EnvConfigDir overrides the global Claude config directory.
const EnvConfigDir = "CLAUDE_CONFIG_DIR"

// DefaultConfigRoot is the Claude config directory name under home and
// under a project.
const DefaultConfigRoot = ".claude"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.Wrapf(ErrHomeDirNotFound, "%v", err)
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// AppConfigDir returns <ConfigHome>/kata.
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// ExpandTilde replaces a leading "~/" (or a bare "~") with the home directory.
// Other paths are returned unchanged.
func ExpandTilde(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}

// Abbreviate replaces a leading home directory in p with "~" for display.
func Abbreviate(p string) string {
	home, err := ResolveHome()
	if err != nil {
		return p
	}
	if p == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(p, home+string(filepath.Separator)); ok {
		return "~/" + filepath.ToSlash(rest)
	}
	return p
}

// HomeClaudeDir returns ~/.claude regardless of overrides. The update cache
// always lives here.
func HomeClaudeDir() (string, error) {
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigRoot), nil
}
