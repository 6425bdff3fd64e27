package paths

import (
	"os"
	"path/filepath"

	"github.com/gannonh/kata/internal/errors"
)

// Scope selects where an install goes.
type Scope int

const (
	// ScopeGlobal installs into the user's Claude config directory.
	ScopeGlobal Scope = iota
	// ScopeLocal installs into <project>/.claude.
	ScopeLocal
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeLocal:
		return "local"
	default:
		return "unknown"
	}
}

// ConfigDir is a resolved install location.
type ConfigDir struct {
	Scope Scope
	// Dir is the absolute directory.
	Dir string
	// Custom is set for a global directory chosen by flag or environment.
	Custom bool
}

// Resolve picks the install directory for scope.
//
// For ScopeGlobal the directory is explicit if non-empty, then
// $CLAUDE_CONFIG_DIR, then ~/.claude. A leading "~/" is expanded in both
// overrides. For ScopeLocal it is <projectDir>/.claude and explicit must be
// empty.
func Resolve(scope Scope, explicit, projectDir string) (*ConfigDir, error) {
	switch scope {
	case ScopeLocal:
		if explicit != "" {
			return nil, errors.Wrap(ErrInvalidPath, "a config directory cannot be combined with a local install")
		}
		if projectDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, errors.Wrap(err, "determining working directory")
			}
			projectDir = wd
		}
		return &ConfigDir{Scope: ScopeLocal, Dir: filepath.Join(projectDir, DefaultConfigRoot)}, nil

	case ScopeGlobal:
		for _, override := range []string{explicit, os.Getenv(EnvConfigDir)} {
			if override == "" {
				continue
			}
			dir, err := ExpandTilde(override)
			if err != nil {
				return nil, err
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidPath, "%s: %v", override, err)
			}
			return &ConfigDir{Scope: ScopeGlobal, Dir: abs, Custom: true}, nil
		}
		dir, err := HomeClaudeDir()
		if err != nil {
			return nil, err
		}
		return &ConfigDir{Scope: ScopeGlobal, Dir: dir}, nil
	}
	return nil, errors.Newf("unknown scope %d", scope)
}

// Prefix is the path prefix installed markdown uses to refer to Dir.
func (c *ConfigDir) Prefix() string {
	switch {
	case c.Scope == ScopeLocal:
		return "./" + DefaultConfigRoot + "/"
	case c.Custom:
		return filepath.ToSlash(c.Dir) + "/"
	default:
		return "~/" + DefaultConfigRoot + "/"
	}
}

// Label is Dir shortened for display.
func (c *ConfigDir) Label() string {
	if c.Scope == ScopeLocal {
		return "./" + DefaultConfigRoot
	}
	return Abbreviate(c.Dir)
}

// Join returns a path under Dir.
func (c *ConfigDir) Join(elem ...string) string {
	return filepath.Join(append([]string{c.Dir}, elem...)...)
}

// AgentDir returns <dir>/agents.
func (c *ConfigDir) AgentDir() string { return c.Join("agents") }

// SkillDir returns <dir>/skills.
func (c *ConfigDir) SkillDir() string { return c.Join("skills") }

// CommandDir returns <dir>/commands.
func (c *ConfigDir) CommandDir() string { return c.Join("commands") }

// HookDir returns <dir>/hooks.
func (c *ConfigDir) HookDir() string { return c.Join("hooks") }

// SettingsPath returns <dir>/settings.json.
func (c *ConfigDir) SettingsPath() string { return c.Join("settings.json") }
