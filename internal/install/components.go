package install

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gannonh/kata/internal/copier"
	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/internal/transform"
	"github.com/gannonh/kata/pkg/fileutil"
)

// step installs one component. attempted is false when the source has
// nothing to offer for it.
type step func() (name string, attempted bool, err error)

type components struct {
	src     string
	target  *paths.ConfigDir
	naming  transform.Naming
	version string
	rewrite transform.Rule
	log     *slog.Logger
}

func (c *components) steps() []step {
	return []step{
		c.resources,
		c.agents,
		c.skills,
		c.changelog,
		c.versionStamp,
		c.commands,
		c.hooks,
	}
}

// options returns copier settings for install. The build deny-list does
// not apply: a distribution tree is copied as shipped, minus dotfiles.
func (c *components) options(clean bool) copier.Options {
	return copier.Options{
		Deny:      []string{},
		Transform: func(_, content string) string { return c.rewrite(content) },
		Clean:     clean,
		Logger:    c.log,
	}
}

func (c *components) resourceDir() string {
	return c.target.Join(c.naming.Namespace)
}

// resources replaces <target>/kata with the source's kata directory.
func (c *components) resources() (string, bool, error) {
	name := c.naming.Namespace
	src := filepath.Join(c.src, name)
	if !fileutil.IsDir(src) {
		return name, false, nil
	}
	if _, err := copier.Copy(src, c.resourceDir(), c.options(true)); err != nil {
		return name, true, err
	}
	return name, true, verifyDir(c.resourceDir())
}

// agents removes kata's agent files and copies the shipped ones. Agent
// files written by the user are left in place.
func (c *components) agents() (string, bool, error) {
	const name = "agents"
	src := filepath.Join(c.src, name)
	if !fileutil.IsDir(src) {
		return name, false, nil
	}
	dst := c.target.AgentDir()
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return name, true, errors.Wrapf(err, "creating %s", dst)
	}

	owned := c.ownedPrefixes()
	existing, err := os.ReadDir(dst)
	if err != nil {
		return name, true, errors.Wrapf(err, "reading %s", dst)
	}
	for _, e := range existing {
		if e.IsDir() || !isMarkdown(e.Name()) || !hasAnyPrefix(e.Name(), owned) {
			continue
		}
		if err := os.Remove(filepath.Join(dst, e.Name())); err != nil {
			return name, true, errors.Wrapf(err, "removing agent %s", e.Name())
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return name, true, errors.Wrapf(err, "reading %s", src)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || !isMarkdown(e.Name()) {
			continue
		}
		if _, err := copier.CopyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()), c.options(false)); err != nil {
			return name, true, err
		}
	}
	return name, true, verifyDir(dst)
}

// skills removes kata's skill directories and clean-copies each shipped
// skill. Skills without the namespace prefix are left in place.
func (c *components) skills() (string, bool, error) {
	const name = "skills"
	src := filepath.Join(c.src, name)
	if !fileutil.IsDir(src) {
		return name, false, nil
	}
	dst := c.target.SkillDir()
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return name, true, errors.Wrapf(err, "creating %s", dst)
	}

	existing, err := os.ReadDir(dst)
	if err != nil {
		return name, true, errors.Wrapf(err, "reading %s", dst)
	}
	for _, e := range existing {
		if !e.IsDir() || !c.naming.HasPrefix(e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dst, e.Name())); err != nil {
			return name, true, errors.Wrapf(err, "removing skill %s", e.Name())
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return name, true, errors.Wrapf(err, "reading %s", src)
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := copier.Copy(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()), c.options(true)); err != nil {
			return name, true, err
		}
	}
	return name, true, verifyDir(dst)
}

func (c *components) changelog() (string, bool, error) {
	const name = "CHANGELOG.md"
	src := filepath.Join(c.src, name)
	if !fileutil.Exists(src) {
		return name, false, nil
	}
	dst := filepath.Join(c.resourceDir(), name)
	opts := c.options(false)
	opts.Transform = nil
	if _, err := copier.CopyFile(src, dst, opts); err != nil {
		return name, true, err
	}
	return name, true, verifyFile(dst)
}

// versionStamp records the installed version for the update check.
func (c *components) versionStamp() (string, bool, error) {
	const name = "VERSION"
	dst := filepath.Join(c.resourceDir(), name)
	if err := os.MkdirAll(c.resourceDir(), 0o755); err != nil {
		return name, true, errors.Wrapf(err, "creating %s", c.resourceDir())
	}
	if err := fileutil.AtomicWriteFile(dst, []byte(c.version), 0o644); err != nil {
		return name, true, err
	}
	return name, true, verifyFile(dst)
}

// commands replaces commands/kata.
func (c *components) commands() (string, bool, error) {
	name := "commands/" + c.naming.Namespace
	src := filepath.Join(c.src, "commands", c.naming.Namespace)
	if !fileutil.IsDir(src) {
		return name, false, nil
	}
	dst := filepath.Join(c.target.CommandDir(), c.naming.Namespace)
	if _, err := copier.Copy(src, dst, c.options(true)); err != nil {
		return name, true, err
	}
	return name, true, verifyDir(dst)
}

// hooks copies hook scripts over the existing directory without removing
// hooks from other sources.
func (c *components) hooks() (string, bool, error) {
	const name = "hooks"
	src := filepath.Join(c.src, name)
	if !fileutil.IsDir(src) {
		return name, false, nil
	}
	dst := c.target.HookDir()
	opts := c.options(false)
	opts.Transform = nil
	opts.Exclude = func(_ string, d fs.DirEntry) bool { return d.IsDir() }
	if _, err := copier.Copy(src, dst, opts); err != nil {
		return name, true, err
	}
	return name, true, verifyDir(dst)
}

func (c *components) ownedPrefixes() []string {
	return append([]string{c.naming.Namespace + "-"}, legacyPrefixes...)
}

func verifyDir(p string) error {
	ok, err := fileutil.DirHasEntries(p)
	if err != nil {
		return errors.Wrapf(err, "verifying %s", p)
	}
	if !ok {
		return errors.Newf("%s is empty", p)
	}
	return nil
}

func verifyFile(p string) error {
	if !fileutil.Exists(p) {
		return errors.Newf("%s was not written", p)
	}
	return nil
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
