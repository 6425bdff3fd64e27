package build

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/manifest"
	"github.com/gannonh/kata/internal/schema"
	"github.com/gannonh/kata/internal/transform"
	"github.com/gannonh/kata/internal/validator"
	"github.com/gannonh/kata/pkg/fileutil"
	"github.com/gannonh/kata/pkg/frontmatter"
)

// PluginManifest is the plugin descriptor path inside the plugin target.
const PluginManifest = ".claude-plugin/plugin.json"

// Validate checks a built target tree. It never stops early.
func (b *Builder) Validate(dir string, target manifest.Target, version string) *validator.Result {
	m := b.manifest()
	res := &validator.Result{Subject: string(target)}

	for _, d := range m.RequiredDirs {
		if !fileutil.IsDir(filepath.Join(dir, filepath.FromSlash(d))) {
			res.AddError(d, "missing directory")
		}
	}

	switch target {
	case manifest.TargetPlugin:
		b.validatePlugin(dir, version, res)
	case manifest.TargetNPM:
		validateNPM(dir, m, res)
	}

	checkStamp(dir, version, res)
	if !IsSemver(version) {
		res.AddWarning("package.json", "version "+version+" is not a semantic version")
	}
	return res
}

func (b *Builder) validatePlugin(dir, version string, res *validator.Result) {
	m := b.manifest()
	n := b.naming()
	ref := n.HomeReference()

	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			res.AddError(rel(dir, p), err.Error())
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != ".md" || d.Name() == m.Changelog {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			res.AddError(rel(dir, p), err.Error())
			return nil
		}
		if strings.Contains(string(data), ref) {
			res.AddErrorf(rel(dir, p), "contains %s reference", ref)
		}
		return nil
	})

	for _, ex := range m.PluginExcludes {
		for _, candidate := range excludedForms(ex, m.SkillsDir, n) {
			if fileutil.Exists(filepath.Join(dir, filepath.FromSlash(candidate))) {
				res.AddError(candidate, "excluded from plugin but present")
			}
		}
	}

	checkSkillNames(dir, m.SkillsDir, res)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(PluginManifest)))
	if errors.Is(err, fs.ErrNotExist) {
		res.AddWarning(PluginManifest, "missing")
		return
	}
	if err != nil {
		res.AddError(PluginManifest, err.Error())
		return
	}
	issues, err := schema.ValidatePlugin(data)
	if err != nil {
		res.AddError(PluginManifest, err.Error())
		return
	}
	for _, i := range issues {
		res.AddError(PluginManifest, i.String())
	}

	var pm struct {
		Version string `json:"version"`
	}
	if json.Unmarshal(data, &pm) == nil && pm.Version != "" && pm.Version != version {
		res.AddErrorf(PluginManifest, "version %s does not match package.json version %s", pm.Version, version)
	}
}

// excludedForms returns ex plus the renamed path a skill exclusion would
// have after the plugin rename.
func excludedForms(ex, skills string, n transform.Naming) []string {
	forms := []string{ex}
	if skills == "" || !strings.HasPrefix(ex, skills+"/") {
		return forms
	}
	rest := strings.TrimPrefix(ex, skills+"/")
	first, tail, _ := strings.Cut(rest, "/")
	renamed := path.Join(skills, n.StripPrefix(first), tail)
	if renamed != ex {
		forms = append(forms, renamed)
	}
	return forms
}

// checkSkillNames warns about skills whose frontmatter name differs from
// their directory name. The host resolves skills by directory.
func checkSkillNames(dir, skills string, res *validator.Result) {
	if skills == "" {
		return
	}
	entries, err := os.ReadDir(filepath.Join(dir, filepath.FromSlash(skills)))
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		relPath := path.Join(skills, e.Name(), "SKILL.md")
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(relPath)))
		if err != nil {
			res.AddWarning(relPath, "missing")
			continue
		}
		var meta struct {
			Name string `yaml:"name"`
		}
		err = frontmatter.ParseHeader(f, &meta)
		f.Close()
		switch {
		case err != nil:
			res.AddErrorf(relPath, "frontmatter: %v", err)
		case meta.Name != "" && meta.Name != e.Name():
			res.AddWarning(relPath, fmt.Sprintf("name %q does not match directory %q", meta.Name, e.Name()))
		}
	}
}

// validateNPM requires the installer entry only when package.json declares
// executables. A package without bin installs nothing to run.
func validateNPM(dir string, m *manifest.Manifest, res *validator.Result) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		res.AddError("package.json", "missing")
		return
	}
	issues, err := schema.ValidatePackage(data)
	if err != nil {
		res.AddError("package.json", err.Error())
		return
	}
	for _, i := range issues {
		res.AddError("package.json", i.String())
	}

	if m.InstallerEntry == "" || fileutil.Exists(filepath.Join(dir, filepath.FromSlash(m.InstallerEntry))) {
		return
	}
	var pkg struct {
		Bin json.RawMessage `json:"bin"`
	}
	if json.Unmarshal(data, &pkg) == nil && len(pkg.Bin) == 0 {
		res.AddWarning(m.InstallerEntry, "missing installer entry")
		return
	}
	res.AddError(m.InstallerEntry, "missing installer entry")
}

func checkStamp(dir, version string, res *validator.Result) {
	data, err := os.ReadFile(filepath.Join(dir, VersionFile))
	switch {
	case err != nil:
		res.AddError(VersionFile, "missing")
	case string(data) != version:
		res.AddErrorf(VersionFile, "contains %q, want %q", data, version)
	}
}

func rel(root, p string) string {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(r)
}
