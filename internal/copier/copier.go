// Package copier copies directory trees with exclusion, renaming and
// per-file content transforms.
package copier

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
)

// ErrSourceNotFound is returned when the copy source does not exist.
// Callers treat it as a soft failure.
var ErrSourceNotFound = errors.New("source not found")

// ErrSymlink is returned when the source tree contains a symbolic link.
// Links are refused so a tree cannot pull content from outside its root.
var ErrSymlink = errors.New("symlinks are not allowed")

// DefaultDeny lists entry names never copied, at any depth.
var DefaultDeny = []string{
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
}

// Options controls a copy.
type Options struct {
	// Deny replaces DefaultDeny when non-nil.
	Deny []string

	// Exclude reports whether the entry at rel should be skipped.
	// rel is slash-separated and prefixed with RelBase.
	Exclude func(rel string, d fs.DirEntry) bool

	// Rename returns the destination name for the entry at rel.
	Rename func(rel, name string) string

	// Transform rewrites the content of text files.
	Transform func(rel, content string) string

	// TextExtensions selects the files passed to Transform. Defaults to ".md".
	TextExtensions []string

	// Clean removes the destination before copying.
	Clean bool

	// RelBase is the slash-separated path of the copy root relative to
	// whatever the Exclude and Rename callbacks consider the root.
	RelBase string

	Logger *slog.Logger
}

// Stats counts what a copy did.
type Stats struct {
	Files       int
	Transformed int
	Excluded    int
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Transformed += o.Transformed
	s.Excluded += o.Excluded
}

// Copy copies the tree at src to dst. If src is a file it behaves as CopyFile.
func Copy(src, dst string, opts Options) (Stats, error) {
	info, err := os.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stats{}, errors.Wrapf(ErrSourceNotFound, "%s", src)
		}
		return Stats{}, errors.Wrapf(err, "checking source %s", src)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return Stats{}, errors.Wrapf(ErrSymlink, "%s", src)
	}

	if opts.Clean {
		if err := os.RemoveAll(dst); err != nil {
			return Stats{}, errors.Wrapf(err, "cleaning %s", dst)
		}
	}

	if !info.IsDir() {
		return copyFile(src, dst, opts.RelBase, &opts)
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return Stats{}, errors.Wrapf(err, "creating directory %s", dst)
	}
	return copyDir(src, dst, opts.RelBase, &opts)
}

// CopyFile copies a single file, applying Transform when its extension is
// a text extension. Parent directories of dst are created.
func CopyFile(src, dst string, opts Options) (Stats, error) {
	info, err := os.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stats{}, errors.Wrapf(ErrSourceNotFound, "%s", src)
		}
		return Stats{}, errors.Wrapf(err, "checking source %s", src)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return Stats{}, errors.Wrapf(ErrSymlink, "%s", src)
	}
	if info.IsDir() {
		return Stats{}, errors.Newf("%s is a directory", src)
	}
	return copyFile(src, dst, opts.RelBase, &opts)
}

func copyDir(src, dst, rel string, opts *Options) (Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(src)
	if err != nil {
		return stats, errors.Wrapf(err, "reading directory %s", src)
	}

	for _, entry := range entries {
		name := entry.Name()
		entryRel := joinRel(rel, name)

		if opts.denied(name) || (opts.Exclude != nil && opts.Exclude(entryRel, entry)) {
			stats.Excluded++
			opts.logger().Debug("excluded", "path", entryRel)
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			return stats, errors.Wrapf(ErrSymlink, "%s", filepath.Join(src, name))
		}

		destName := name
		if opts.Rename != nil {
			destName = opts.Rename(entryRel, name)
		}
		srcPath := filepath.Join(src, name)
		dstPath := filepath.Join(dst, destName)

		var sub Stats
		if entry.IsDir() {
			if err := os.MkdirAll(dstPath, 0o755); err != nil {
				return stats, errors.Wrapf(err, "creating directory %s", dstPath)
			}
			sub, err = copyDir(srcPath, dstPath, entryRel, opts)
		} else {
			sub, err = copyFile(srcPath, dstPath, entryRel, opts)
		}
		stats.add(sub)
		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func copyFile(src, dst, rel string, opts *Options) (Stats, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Stats{}, errors.Wrapf(err, "creating directory for %s", dst)
	}

	if opts.Transform != nil && opts.isText(src) {
		return transformFile(src, dst, rel, opts)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "opening source file %s", src)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return Stats{}, errors.Wrapf(err, "stating source file %s", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return Stats{}, errors.Wrapf(err, "creating destination file %s", dst)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return Stats{}, errors.Wrapf(err, "copying %s to %s", src, dst)
	}
	if err := dstFile.Close(); err != nil {
		return Stats{}, errors.Wrapf(err, "closing %s", dst)
	}
	opts.trace("copied", rel)
	return Stats{Files: 1}, nil
}

func transformFile(src, dst, rel string, opts *Options) (Stats, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "stating source file %s", src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "reading %s", src)
	}

	out := opts.Transform(rel, string(data))
	if err := os.WriteFile(dst, []byte(out), info.Mode().Perm()); err != nil {
		return Stats{}, errors.Wrapf(err, "writing %s", dst)
	}

	stats := Stats{Files: 1}
	if out != string(data) {
		stats.Transformed = 1
		opts.trace("transformed", rel)
	} else {
		opts.trace("copied", rel)
	}
	return stats, nil
}

func (o *Options) denied(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	deny := o.Deny
	if deny == nil {
		deny = DefaultDeny
	}
	return slices.Contains(deny, name)
}

func (o *Options) isText(name string) bool {
	exts := o.TextExtensions
	if len(exts) == 0 {
		exts = []string{".md"}
	}
	return slices.Contains(exts, filepath.Ext(name))
}

func (o *Options) trace(msg, rel string) {
	o.logger().Log(context.Background(), logging.LevelTrace, msg, "path", rel)
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func joinRel(base, name string) string {
	if base == "" {
		return name
	}
	return path.Join(base, name)
}
