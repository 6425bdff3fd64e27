package update

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
)

const (
	// DefaultPackage is the npm package kata is published as.
	DefaultPackage = "@gannonh/kata"
	// DefaultRegistry is the public npm registry.
	DefaultRegistry = "https://registry.npmjs.org"
	// DefaultTimeout bounds the registry request.
	DefaultTimeout = 10 * time.Second

	// UnknownInstalled is reported when the VERSION file cannot be read.
	UnknownInstalled = "0.0.0"
	// UnknownLatest is reported when the registry cannot be reached.
	UnknownLatest = "unknown"

	maxResponseSize = 1 << 20
)

// Result is the outcome of a check. It is also the cache file format.
type Result struct {
	UpdateAvailable bool   `json:"update_available"`
	Installed       string `json:"installed"`
	Latest          string `json:"latest"`
	// Checked is a Unix timestamp in seconds.
	Checked int64 `json:"checked"`
}

// Checker compares the installed version against the registry.
type Checker struct {
	// VersionFile holds the installed version.
	VersionFile string
	// CacheFile receives the result.
	CacheFile string

	Package  string
	Registry string
	Timeout  time.Duration
	Client   *http.Client

	now func() time.Time
}

// Check reads the installed version and asks the registry for the latest.
// It never fails: missing pieces are reported as UnknownInstalled or
// UnknownLatest.
func (c *Checker) Check(ctx context.Context) Result {
	log := logging.FromContext(ctx)

	installed := UnknownInstalled
	if data, err := os.ReadFile(c.VersionFile); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			installed = v
		}
	} else {
		log.Debug("no installed version", "path", c.VersionFile, "error", err)
	}

	latest, err := c.Latest(ctx)
	if err != nil {
		log.Debug("registry lookup failed", "error", err)
		latest = UnknownLatest
	}

	return Result{
		UpdateAvailable: Newer(installed, latest),
		Installed:       installed,
		Latest:          latest,
		Checked:         c.clock().Unix(),
	}
}

// Run checks and writes the result to CacheFile.
func (c *Checker) Run(ctx context.Context) (Result, error) {
	res := c.Check(ctx)
	if err := WriteCache(c.CacheFile, res); err != nil {
		return res, err
	}
	logging.FromContext(ctx).Debug("update check complete",
		"installed", res.Installed, "latest", res.Latest, "update_available", res.UpdateAvailable)
	return res, nil
}

// Latest fetches the dist-tag "latest" version of Package.
func (c *Checker) Latest(ctx context.Context) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u, err := c.latestURL()
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "kata-update-check")

	resp, err := c.client().Do(req)
	if err != nil {
		return "", errors.Wrap(err, "querying registry")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("registry returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", errors.Wrap(err, "reading registry response")
	}
	var doc struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", errors.Wrap(err, "parsing registry response")
	}
	if doc.Version == "" {
		return "", errors.New("registry response has no version")
	}
	return doc.Version, nil
}

func (c *Checker) latestURL() (string, error) {
	registry := c.Registry
	if registry == "" {
		registry = DefaultRegistry
	}
	pkg := c.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	u, err := url.JoinPath(registry, pkg, "latest")
	if err != nil {
		return "", errors.Wrapf(err, "invalid registry %q", registry)
	}
	return u, nil
}

func (c *Checker) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func (c *Checker) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
