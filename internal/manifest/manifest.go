// Package manifest describes which source paths go into each distribution
// target and which are left out.
//
// The built-in lists are returned by [Default]. A project can override any
// list with a kata-build.toml file read by [Load]:
//
//	plugin_excludes = ["commands/kata/update.md", "skills/kata-updating"]
//
//	[[common]]
//	source = "agents"
//
//	[[npm]]
//	source = "bin"
package manifest

import (
	"os"
	"path"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gannonh/kata/internal/errors"
)

// Target is a distribution build target.
type Target string

const (
	// TargetPlugin is the marketplace plugin tree.
	TargetPlugin Target = "plugin"
	// TargetNPM is the package installed through the installer.
	TargetNPM Target = "npm"
)

// Targets lists every target in build order.
var Targets = []Target{TargetPlugin, TargetNPM}

// ParseTarget converts a name into a Target.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetPlugin, TargetNPM:
		return t, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownTarget, "%q", s)
}

// Entry is one path copied into a distribution.
type Entry struct {
	// Source is the slash-separated path relative to the source root.
	Source string `toml:"source"`
	// Dest is the path relative to the target root. Defaults to Source.
	Dest string `toml:"dest,omitempty"`
	// Optional entries are skipped silently when missing.
	Optional bool `toml:"optional,omitempty"`
}

// Destination returns Dest, or Source when Dest is unset.
func (e Entry) Destination() string {
	if e.Dest != "" {
		return e.Dest
	}
	return e.Source
}

// Manifest is the full set of build lists.
type Manifest struct {
	// Common entries go into every target.
	Common []Entry `toml:"common"`
	// Plugin and NPM entries go into one target only.
	Plugin []Entry `toml:"plugin"`
	NPM    []Entry `toml:"npm"`

	// Excludes names entries skipped at any depth. A value containing a
	// slash is matched as a path relative to the source root instead.
	Excludes []string `toml:"excludes"`

	// PluginExcludes are source paths left out of the plugin target, along
	// with everything beneath them.
	PluginExcludes []string `toml:"plugin_excludes"`

	// RequiredDirs must exist in every built target.
	RequiredDirs []string `toml:"required_dirs"`

	// SkillsDir holds skill directories, renamed for the plugin target.
	SkillsDir string `toml:"skills_dir"`

	// InstallerEntry must exist in the npm target.
	InstallerEntry string `toml:"installer_entry"`

	// Changelog is exempt from the plugin path check.
	Changelog string `toml:"changelog"`
}

// Default returns the built-in manifest.
func Default() *Manifest {
	return &Manifest{
		Common: []Entry{
			{Source: "commands/kata"},
			{Source: "skills"},
			{Source: "agents"},
			{Source: "hooks"},
			{Source: "CHANGELOG.md"},
		},
		Plugin: []Entry{
			{Source: ".claude-plugin"},
		},
		NPM: []Entry{
			{Source: "bin"},
			{Source: "package.json"},
		},
		Excludes: []string{
			".planning",
			"tests",
			".git",
			"dev",
			"scripts",
			"node_modules",
			".secrets",
			".github",
			"assets",
			"dist",
			".DS_Store",
			"hooks/dist",
		},
		PluginExcludes: []string{
			"commands/kata/update.md",
			"skills/kata-updating",
		},
		RequiredDirs:   []string{"agents", "skills"},
		SkillsDir:      "skills",
		InstallerEntry: "bin/install.js",
		Changelog:      "CHANGELOG.md",
	}
}

// overlay mirrors Manifest with pointers so a file can override single lists.
type overlay struct {
	Common         *[]Entry  `toml:"common"`
	Plugin         *[]Entry  `toml:"plugin"`
	NPM            *[]Entry  `toml:"npm"`
	Excludes       *[]string `toml:"excludes"`
	PluginExcludes *[]string `toml:"plugin_excludes"`
	RequiredDirs   *[]string `toml:"required_dirs"`
	SkillsDir      *string   `toml:"skills_dir"`
	InstallerEntry *string   `toml:"installer_entry"`
	Changelog      *string   `toml:"changelog"`
}

// Load returns the default manifest overlaid with the TOML file at p.
// A missing file is not an error.
func Load(p string) (*Manifest, error) {
	m := Default()
	if p == "" {
		return m, nil
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, errors.Wrapf(err, "opening manifest %s", p)
	}
	defer f.Close()

	var o overlay
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.Newf("manifest %s: %s", p, strict.String())
		}
		return nil, errors.Wrapf(err, "parsing manifest %s", p)
	}

	apply(&m.Common, o.Common)
	apply(&m.Plugin, o.Plugin)
	apply(&m.NPM, o.NPM)
	apply(&m.Excludes, o.Excludes)
	apply(&m.PluginExcludes, o.PluginExcludes)
	apply(&m.RequiredDirs, o.RequiredDirs)
	apply(&m.SkillsDir, o.SkillsDir)
	apply(&m.InstallerEntry, o.InstallerEntry)
	apply(&m.Changelog, o.Changelog)

	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "manifest %s", p)
	}
	return m, nil
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks that every path stays inside the source root.
// All problems are reported together.
func (m *Manifest) Validate() error {
	var errs []error
	check := func(field, p string) {
		if err := checkRelative(p); err != nil {
			errs = append(errs, errors.Wrapf(err, "%s", field))
		}
	}

	for name, entries := range map[string][]Entry{"common": m.Common, "plugin": m.Plugin, "npm": m.NPM} {
		for _, e := range entries {
			check(name+".source", e.Source)
			if e.Dest != "" {
				check(name+".dest", e.Dest)
			}
		}
	}
	for _, p := range m.PluginExcludes {
		check("plugin_excludes", p)
	}
	for _, p := range m.RequiredDirs {
		check("required_dirs", p)
	}
	if m.SkillsDir != "" {
		check("skills_dir", m.SkillsDir)
	}
	if m.InstallerEntry != "" {
		check("installer_entry", m.InstallerEntry)
	}

	if len(errs) == 0 {
		return nil
	}
	// Map iteration order varies; keep the message stable.
	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return errors.Join(errs...)
}

func checkRelative(p string) error {
	switch {
	case p == "":
		return errors.New("empty path")
	case strings.Contains(p, `\`):
		return errors.Newf("%q: use forward slashes", p)
	case path.IsAbs(p):
		return errors.Newf("%q: absolute path", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.Newf("%q: escapes the source root", p)
	}
	return nil
}

// Entries returns the entries copied into target, common entries first.
func (m *Manifest) Entries(target Target) []Entry {
	out := slices.Clone(m.Common)
	switch target {
	case TargetPlugin:
		out = append(out, m.Plugin...)
	case TargetNPM:
		out = append(out, m.NPM...)
	}
	return out
}

// ExcludedPath reports whether the source-relative path rel matches a
// slash-containing exclude.
func (m *Manifest) ExcludedPath(rel string) bool {
	for _, ex := range m.Excludes {
		if strings.Contains(ex, "/") && under(rel, ex) {
			return true
		}
	}
	return false
}

// ExcludedFromPlugin reports whether rel is, or lies beneath, a plugin exclude.
func (m *Manifest) ExcludedFromPlugin(rel string) bool {
	for _, ex := range m.PluginExcludes {
		if under(rel, ex) {
			return true
		}
	}
	return false
}

// DenyNames returns the slash-free excludes, the form the copier matches
// against entry names.
func (m *Manifest) DenyNames() []string {
	out := make([]string, 0, len(m.Excludes))
	for _, ex := range m.Excludes {
		if !strings.Contains(ex, "/") {
			out = append(out, ex)
		}
	}
	return out
}

func under(rel, prefix string) bool {
	return rel == prefix || strings.HasPrefix(rel, prefix+"/")
}
