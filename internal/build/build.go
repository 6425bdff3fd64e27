package build

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gannonh/kata/internal/copier"
	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
	"github.com/gannonh/kata/internal/manifest"
	"github.com/gannonh/kata/internal/transform"
	"github.com/gannonh/kata/internal/validator"
	"github.com/gannonh/kata/pkg/fileutil"
)

// ErrValidationFailed is returned when a built tree fails validation.
var ErrValidationFailed = errors.New("build validation failed")

// VersionFile is the name of the version stamp written into each target.
const VersionFile = "VERSION"

// Builder builds distribution targets.
type Builder struct {
	// Source is the repository root.
	Source string
	// Dist is the output root; targets are built into Dist/<target>.
	Dist string
	// Manifest selects what is copied. Defaults to manifest.Default().
	Manifest *manifest.Manifest
	// Naming drives the plugin rewrites. Defaults to transform.DefaultNaming.
	Naming *transform.Naming
}

// Result describes one built target.
type Result struct {
	Target  manifest.Target
	Dir     string
	Version string
	Stats   copier.Stats
	// Skipped lists manifest entries whose source was missing.
	Skipped    []string
	Validation *validator.Result
}

func (b *Builder) manifest() *manifest.Manifest {
	if b.Manifest != nil {
		return b.Manifest
	}
	return manifest.Default()
}

func (b *Builder) naming() transform.Naming {
	if b.Naming != nil {
		return *b.Naming
	}
	return transform.DefaultNaming
}

// BuildAll builds targets in order and stops at the first failure.
// Results for every attempted target are returned.
func (b *Builder) BuildAll(ctx context.Context, targets []manifest.Target) ([]*Result, error) {
	results := make([]*Result, 0, len(targets))
	for _, t := range targets {
		res, err := b.Build(ctx, t)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Build builds one target. A non-nil Result is returned whenever the tree
// was written, including when validation fails.
func (b *Builder) Build(ctx context.Context, target manifest.Target) (*Result, error) {
	log := logging.FromContext(ctx).With("target", string(target))
	m := b.manifest()

	version, err := ReadVersion(b.Source)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(b.Dist, string(target))
	if err := os.RemoveAll(dest); err != nil {
		return nil, errors.Wrapf(err, "cleaning %s", dest)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dest)
	}
	log.Info("building", "version", version, "dir", dest)

	res := &Result{
		Target:     target,
		Dir:        dest,
		Version:    version,
		Validation: &validator.Result{Subject: string(target)},
	}

	for _, entry := range m.Entries(target) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if target == manifest.TargetPlugin && m.ExcludedFromPlugin(entry.Source) {
			log.Info("excluded", "path", entry.Source)
			res.Stats.Excluded++
			continue
		}

		src := filepath.Join(b.Source, filepath.FromSlash(entry.Source))
		dst := filepath.Join(dest, filepath.FromSlash(entry.Destination()))
		stats, err := copier.Copy(src, dst, b.copyOptions(target, entry, log))
		res.Stats.Files += stats.Files
		res.Stats.Transformed += stats.Transformed
		res.Stats.Excluded += stats.Excluded
		if errors.Is(err, copier.ErrSourceNotFound) {
			res.Skipped = append(res.Skipped, entry.Source)
			if !entry.Optional {
				log.Warn("skipped", "path", entry.Source, "reason", "not found")
			}
			continue
		}
		if err != nil {
			return res, errors.Wrapf(err, "copying %s", entry.Source)
		}
		log.Info("copied", "path", entry.Source, "files", stats.Files)
	}

	if target == manifest.TargetNPM {
		if err := cleanPackageJSON(filepath.Join(dest, "package.json")); err != nil {
			return res, err
		}
	}

	// The stamp is the exact version string, without a trailing newline.
	if err := fileutil.AtomicWriteFile(filepath.Join(dest, VersionFile), []byte(version), 0o644); err != nil {
		return res, errors.Wrap(err, "writing VERSION")
	}
	log.Info("wrote VERSION", "version", version)

	res.Validation.Merge(b.Validate(dest, target, version))
	if res.Validation.HasErrors() {
		for _, issue := range res.Validation.Errors() {
			log.Error("validation", "path", issue.Path, "problem", issue.Message)
		}
		return res, errors.Wrapf(ErrValidationFailed, "%s", res.Validation.Err())
	}
	for _, issue := range res.Validation.Warnings() {
		log.Warn("validation", "path", issue.Path, "problem", issue.Message)
	}

	log.Info("build complete", "files", res.Stats.Files, "transformed", res.Stats.Transformed)
	return res, nil
}

func (b *Builder) copyOptions(target manifest.Target, entry manifest.Entry, log *slog.Logger) copier.Options {
	m := b.manifest()
	opts := copier.Options{
		Deny:    m.DenyNames(),
		RelBase: entry.Source,
		Logger:  log,
	}

	if target != manifest.TargetPlugin {
		opts.Exclude = func(rel string, _ os.DirEntry) bool {
			return m.ExcludedPath(rel)
		}
		return opts
	}

	n := b.naming()
	skills := m.SkillsDir
	opts.Exclude = func(rel string, d os.DirEntry) bool {
		if m.ExcludedPath(rel) || m.ExcludedFromPlugin(rel) {
			log.Info("excluded", "path", rel)
			return true
		}
		// Loose files at the top of the skills directory are not skills.
		return skills != "" && path.Dir(rel) == skills && !d.IsDir()
	}
	opts.Rename = func(rel, name string) string {
		if skills != "" && path.Dir(rel) == skills {
			return n.StripPrefix(name)
		}
		return name
	}
	opts.Transform = b.pluginTransform(n, skills)
	return opts
}

func (b *Builder) pluginTransform(n transform.Naming, skills string) func(rel, content string) string {
	body := n.PluginBody()
	skillName := transform.Chain(n.SkillName(), body)
	commandName := transform.Chain(n.CommandName(), body)

	return func(rel, content string) string {
		switch {
		case skills != "" && strings.HasPrefix(rel, skills+"/") && path.Base(rel) == "SKILL.md":
			return skillName(content)
		case strings.HasPrefix(rel, "commands/"):
			return commandName(content)
		default:
			return body(content)
		}
	}
}
