package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/logging"
	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/internal/update"
)

var (
	checkForeground bool
	checkLocal      bool
	checkConfigDir  string
)

func init() {
	checkUpdateCmd.Flags().BoolVar(&checkForeground, "foreground", false, "run the check in this process instead of a detached child")
	checkUpdateCmd.Flags().BoolVar(&checkLocal, "local", false, "check the install in ./.claude")
	checkUpdateCmd.Flags().StringVar(&checkConfigDir, "config-dir", "", "check the install in a custom config directory")
	rootCmd.AddCommand(checkUpdateCmd)
}

var checkUpdateCmd = &cobra.Command{
	Use:   "check-update",
	Short: "Check the registry for a newer kata release",
	Long: `check-update compares the installed VERSION with the latest published
release and writes the answer to ~/.claude/cache/kata-update-check.json.

It is registered as a SessionStart hook. Without --foreground it starts a
detached copy of itself and returns at once, so sessions never wait on the
network.`,
	Args: cobra.NoArgs,
	RunE: runCheckUpdate,
}

func runCheckUpdate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	local := checkLocal
	if !local && checkConfigDir == "" {
		if wd, err := os.Getwd(); err == nil {
			local = update.IsLocalInstall(wd)
		}
	}

	if !checkForeground {
		exe, err := os.Executable()
		if err != nil {
			log.Debug("cannot locate executable", "error", err)
			return nil
		}
		args := []string{"check-update", "--foreground"}
		switch {
		case local:
			args = append(args, "--local")
		case checkConfigDir != "":
			args = append(args, "--config-dir", checkConfigDir)
		}
		if err := update.Spawn(exe, args...); err != nil {
			log.Debug("update check not started", "error", err)
		}
		return nil
	}

	c, err := loadedConfig()
	if err != nil {
		return err
	}

	scope := paths.ScopeGlobal
	if local {
		scope = paths.ScopeLocal
	}
	dir, err := paths.Resolve(scope, checkConfigDir, "")
	if err != nil {
		return errors.NewUserError(err, "Check --config-dir")
	}
	cache, err := update.CachePath()
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	checker := &update.Checker{
		VersionFile: update.VersionPath(dir),
		CacheFile:   cache,
		Package:     c.Update.Package,
		Registry:    c.Update.Registry,
		Timeout:     c.Update.Timeout,
	}
	if _, err := checker.Run(ctx); err != nil {
		return errors.NewSystemError(err, "")
	}
	return nil
}
