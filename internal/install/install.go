// Package install copies a kata distribution tree into a Claude config
// directory and registers its hooks in settings.json.
//
// Only kata's own files are replaced: agents and skills the user wrote
// alongside kata's are never touched.
package install

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gannonh/kata/internal/build"
	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/internal/settings"
	"github.com/gannonh/kata/internal/transform"
	"github.com/gannonh/kata/pkg/fileutil"
)

// ErrIncomplete is returned when one or more components failed to install.
var ErrIncomplete = errors.New("installation incomplete")

// OrphanFiles are files shipped by earlier releases that must not linger.
var OrphanFiles = []string{
	"hooks/gsd-notify.sh",
	"hooks/kata-lint.js",
}

// DeprecatedHooks are command substrings of hook registrations to remove.
var DeprecatedHooks = []string{
	"gsd-notify.sh",
}

// UpdateHookMarkers identify an existing update-check registration, from
// this binary or an earlier script-based release.
var UpdateHookMarkers = []string{
	"kata check-update",
	"kata-check-update",
}

// legacyPrefixes name agent files and skill directories owned by kata or
// its predecessor.
var legacyPrefixes = []string{"gsd-"}

// StatusPrompter asks whether to replace an existing status line.
type StatusPrompter interface {
	StatusLine(existing string) (bool, error)
}

// Options configures an install.
type Options struct {
	Scope paths.Scope
	// ConfigDir is an explicit global config directory.
	ConfigDir string
	// SourceDir is the distribution tree to install from.
	SourceDir string
	// ProjectDir is the project root for local installs. Defaults to the
	// working directory.
	ProjectDir string

	ForceStatusline bool
	// Interactive allows Prompter to be consulted.
	Interactive bool
	Prompter    StatusPrompter

	// Naming defaults to transform.DefaultNaming.
	Naming *transform.Naming
}

// StatusLineAction records what happened to the status line.
type StatusLineAction string

const (
	StatusLineInstalled StatusLineAction = "installed"
	StatusLineReplaced  StatusLineAction = "replaced"
	StatusLineKept      StatusLineAction = "kept"
	StatusLineSkipped   StatusLineAction = "skipped"
)

// Report summarizes an install.
type Report struct {
	Target    *paths.ConfigDir
	Version   string
	Installed []string
	Failed    []string
	Orphans   []string

	RemovedHooks int
	HookAdded    bool
	StatusLine   StatusLineAction
}

// Installer performs installs.
type Installer struct {
	opts   Options
	naming transform.Naming
}

// New creates an Installer.
func New(opts Options) *Installer {
	n := transform.DefaultNaming
	if opts.Naming != nil {
		n = *opts.Naming
	}
	return &Installer{opts: opts, naming: n}
}

// Install runs the install. When components fail the returned error wraps
// ErrIncomplete, names every failed component, and settings are left alone.
func (i *Installer) Install(ctx context.Context) (*Report, error) {
	log := logging.FromContext(ctx)

	if !fileutil.IsDir(i.opts.SourceDir) {
		return nil, errors.Newf("source %s is not a directory", i.opts.SourceDir)
	}
	target, err := paths.Resolve(i.opts.Scope, i.opts.ConfigDir, i.opts.ProjectDir)
	if err != nil {
		return nil, err
	}
	version, err := build.ReadVersion(i.opts.SourceDir)
	if err != nil {
		return nil, err
	}

	rep := &Report{Target: target, Version: version}
	log = log.With("scope", target.Scope.String())
	log.Info("installing", "dir", target.Label(), "version", version)

	if err := os.MkdirAll(target.Dir, 0o755); err != nil {
		return rep, errors.Wrapf(err, "creating %s", target.Dir)
	}

	rep.Orphans = removeOrphans(target, log)

	c := &components{
		src:     i.opts.SourceDir,
		target:  target,
		naming:  i.naming,
		version: version,
		rewrite: i.naming.HomePrefix(target.Prefix()),
		log:     log,
	}
	for _, step := range c.steps() {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		name, attempted, err := step()
		if !attempted {
			continue
		}
		if err != nil {
			log.Error("failed to install", "component", name, "error", err)
			rep.Failed = append(rep.Failed, name)
			continue
		}
		log.Info("installed", "component", name)
		rep.Installed = append(rep.Installed, name)
	}

	if len(rep.Failed) > 0 {
		return rep, errors.Wrapf(ErrIncomplete, "failed: %s", strings.Join(rep.Failed, ", "))
	}

	if err := i.configure(ctx, target, rep); err != nil {
		return rep, err
	}
	log.Info("install complete", "dir", target.Label())
	return rep, nil
}

// configure merges kata's hooks and status line into settings.json.
func (i *Installer) configure(ctx context.Context, target *paths.ConfigDir, rep *Report) error {
	log := logging.FromContext(ctx)
	p := target.SettingsPath()

	s, err := settings.Load(ctx, p)
	if err != nil {
		return err
	}

	if n := s.RemoveHooks(DeprecatedHooks); n > 0 {
		rep.RemovedHooks = n
		log.Info("removed deprecated hooks", "count", n)
	}
	if s.EnsureHook(settings.EventSessionStart, UpdateHookMarkers, UpdateHookCommand(target)) {
		rep.HookAdded = true
		log.Info("configured update check hook")
	}

	rep.StatusLine = i.statusLine(s, target, log)

	return settings.Save(p, s)
}

func (i *Installer) statusLine(s settings.Settings, target *paths.ConfigDir, log *slog.Logger) StatusLineAction {
	command := StatusLineCommand(target)
	existing, ok := s.StatusLine()

	switch {
	case !ok:
		s.SetStatusLine(command)
		log.Info("configured statusline")
		return StatusLineInstalled
	case existing == command:
		return StatusLineKept
	case i.opts.ForceStatusline:
		s.SetStatusLine(command)
		log.Info("replaced statusline", "previous", existing)
		return StatusLineReplaced
	case i.opts.Interactive && i.opts.Prompter != nil:
		replace, err := i.opts.Prompter.StatusLine(existing)
		if err != nil {
			log.Warn("keeping existing statusline", "reason", err)
			return StatusLineKept
		}
		if replace {
			s.SetStatusLine(command)
			log.Info("replaced statusline", "previous", existing)
			return StatusLineReplaced
		}
		return StatusLineKept
	default:
		log.Warn("skipping statusline (already configured)", "hint", "--force-statusline")
		return StatusLineSkipped
	}
}

// UpdateHookCommand is the SessionStart command registered for target.
func UpdateHookCommand(target *paths.ConfigDir) string {
	switch {
	case target.Scope == paths.ScopeLocal:
		return "kata check-update --local"
	case target.Custom:
		return `kata check-update --config-dir "` + filepath.ToSlash(target.Dir) + `"`
	default:
		return "kata check-update"
	}
}

// StatusLineCommand is the status line command registered for target.
func StatusLineCommand(target *paths.ConfigDir) string {
	switch {
	case target.Scope == paths.ScopeLocal:
		return "node " + paths.DefaultConfigRoot + "/hooks/statusline.js"
	case target.Custom:
		return `node "` + filepath.ToSlash(target.HookDir()) + `/statusline.js"`
	default:
		return `node "$HOME/` + paths.DefaultConfigRoot + `/hooks/statusline.js"`
	}
}

func removeOrphans(target *paths.ConfigDir, log *slog.Logger) []string {
	var removed []string
	for _, rel := range OrphanFiles {
		p := target.Join(filepath.FromSlash(rel))
		if err := os.Remove(p); err == nil {
			log.Info("removed orphaned file", "path", rel)
			removed = append(removed, rel)
		} else if !os.IsNotExist(err) {
			log.Warn("could not remove orphaned file", "path", rel, "error", err)
		}
	}
	return removed
}
