package config

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gannonh/kata/internal/errors"
)

var namespacePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// FieldError reports an invalid configuration value.
type FieldError struct {
	Field string
	Value string
	Msg   string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Msg + " (got " + `"` + e.Value + `")`
}

// Validate checks cfg and returns every problem found. A nil slice means
// the config is valid.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	add := func(field, value, msg string) {
		errs = append(errs, &FieldError{Field: field, Value: value, Msg: msg})
	}

	if !namespacePattern.MatchString(cfg.Namespace) {
		add("namespace", cfg.Namespace, "must be lowercase letters, digits and dashes")
	}
	if cfg.ConfigRoot == "" || strings.ContainsAny(cfg.ConfigRoot, `/\`) {
		add("config_root", cfg.ConfigRoot, "must be a single directory name")
	}

	for field, p := range map[string]string{
		"build.source_dir":   cfg.Build.SourceDir,
		"build.dist_dir":     cfg.Build.DistDir,
		"build.manifest":     cfg.Build.Manifest,
		"install.source_dir": cfg.Install.SourceDir,
	} {
		if strings.ContainsRune(p, 0) {
			add(field, p, "contains a null byte")
		}
	}
	if cfg.Build.DistDir == "" {
		add("build.dist_dir", "", "is required")
	}

	if cfg.Update.Package == "" {
		add("update.package", "", "is required")
	}
	if u, err := url.Parse(cfg.Update.Registry); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("update.registry", cfg.Update.Registry, "must be an http(s) URL")
	}
	if cfg.Update.Timeout <= 0 {
		add("update.timeout", cfg.Update.Timeout.String(), "must be positive")
	}

	return errs
}
