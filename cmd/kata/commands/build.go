package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata/internal/build"
	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
	"github.com/gannonh/kata/internal/manifest"
	"github.com/gannonh/kata/internal/validator"
)

const targetAll = "all"

var (
	buildSource   string
	buildDist     string
	buildManifest string
	buildFormat   string
)

func init() {
	buildCmd.Flags().StringVar(&buildSource, "source", "", "repository root to build from (default from config: .)")
	buildCmd.Flags().StringVar(&buildDist, "dist", "", "output root (default from config: dist)")
	buildCmd.Flags().StringVar(&buildManifest, "manifest", "", "manifest overlay, relative to the source (default kata-build.toml)")
	buildCmd.Flags().StringVar(&buildFormat, "format", "text", "validation report format: text, json")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build [plugin|npm|all]",
	Short: "Build distribution trees",
	Long: `Build assembles dist/<target> from the source tree.

The plugin target rewrites home-directory references into plugin-relative
ones and namespaces agent and skill references. The npm target copies the
tree verbatim for the installer. Each target is validated after it is
written and every problem is reported at once.`,
	Example: `  kata build
  kata build plugin
  kata build npm --format json`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(manifest.TargetPlugin), string(manifest.TargetNPM), targetAll},
	RunE:      runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	name := targetAll
	if len(args) == 1 {
		name = args[0]
	}
	targets, err := parseTargets(name)
	if err != nil {
		return errors.NewUserError(err, "Valid targets are plugin, npm and all")
	}

	format, err := validator.ParseFormat(buildFormat)
	if err != nil {
		return errors.NewUserError(err, "Use --format text or json")
	}

	c, err := loadedConfig()
	if err != nil {
		return err
	}
	source := firstNonEmpty(buildSource, c.Build.SourceDir)
	dist := firstNonEmpty(buildDist, c.Build.DistDir)
	if !filepath.IsAbs(dist) {
		dist = filepath.Join(source, dist)
	}

	m, err := manifest.Load(filepath.Join(source, firstNonEmpty(buildManifest, c.Build.Manifest)))
	if err != nil {
		return errors.NewUserError(err, "Fix the manifest overlay")
	}

	naming := c.Naming()
	b := &build.Builder{Source: source, Dist: dist, Manifest: m, Naming: &naming}
	results, buildErr := b.BuildAll(cmd.Context(), targets)

	reports := make([]*validator.Result, 0, len(results))
	for _, res := range results {
		reports = append(reports, res.Validation)
	}
	if err := validator.NewReporter(cmd.OutOrStdout(), format).Report(reports...); err != nil {
		return errors.NewSystemError(err, "")
	}

	switch {
	case buildErr == nil:
	case errors.Is(buildErr, build.ErrValidationFailed):
		return errors.NewUserError(buildErr, "Fix the problems above and rebuild")
	default:
		return errors.NewSystemError(buildErr, "")
	}

	log := logging.FromContext(cmd.Context())
	for _, res := range results {
		log.Info("built", "target", string(res.Target), "dir", res.Dir, "version", res.Version)
	}
	return nil
}

// parseTargets expands a target argument into build order.
func parseTargets(name string) ([]manifest.Target, error) {
	if name == targetAll {
		return manifest.Targets, nil
	}
	t, err := manifest.ParseTarget(name)
	if err != nil {
		return nil, err
	}
	return []manifest.Target{t}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
