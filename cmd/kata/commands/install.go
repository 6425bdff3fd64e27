package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gannonh/kata/internal/cli/prompt"
	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/install"
	"github.com/gannonh/kata/internal/logging"
	"github.com/gannonh/kata/internal/paths"
)

var (
	installGlobal          bool
	installLocal           bool
	installConfigDir       string
	installSource          string
	installForceStatusline bool
)

// stdin is the installer's prompt input. Tests replace it.
var stdin io.Reader = os.Stdin

func init() {
	installCmd.Flags().BoolVarP(&installGlobal, "global", "g", false, "install into the Claude config directory")
	installCmd.Flags().BoolVarP(&installLocal, "local", "l", false, "install into ./.claude")
	installCmd.Flags().StringVarP(&installConfigDir, "config-dir", "c", "", "custom Claude config directory (implies --global)")
	installCmd.Flags().StringVarP(&installSource, "source", "s", "", "distribution tree to install (default: the tree kata was shipped in)")
	installCmd.Flags().BoolVar(&installForceStatusline, "force-statusline", false, "replace an existing statusline")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install kata into a Claude config directory",
	Long: `Install copies kata's agents, skills, commands, hooks and resources into
a Claude config directory and registers the update check in settings.json.

The global directory is --config-dir, then $CLAUDE_CONFIG_DIR, then
~/.claude. With no scope flag the installer asks on a terminal and installs
globally otherwise. Agents and skills you wrote yourself are left alone.`,
	Example: `  kata install --global
  kata install --local
  kata install -c ~/.claude-work --force-statusline`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, _ []string) error {
	if installGlobal && installLocal {
		return errors.NewUserError(errors.Wrap(errors.ErrConflictingFlags, "cannot specify both --global and --local"), "Use either --global or --local")
	}
	if installConfigDir != "" && installLocal {
		return errors.NewUserError(errors.Wrap(errors.ErrConflictingFlags, "cannot use --config-dir with --local"), "Drop --local to install into a custom directory")
	}

	c, err := loadedConfig()
	if err != nil {
		return err
	}
	source, err := install.ResolveSource(firstNonEmpty(installSource, c.Install.SourceDir))
	if err != nil {
		return errors.NewUserError(err, "Pass --source with a kata distribution (for example dist/npm)")
	}

	out := cmd.OutOrStdout()
	interactive := logging.IsInteractive(stdin)
	selector := prompt.NewSelectorWithIO(stdin, out)

	scope, err := chooseScope(cmd, selector, interactive)
	if err != nil {
		return err
	}

	naming := c.Naming()
	inst := install.New(install.Options{
		Scope:           scope,
		ConfigDir:       installConfigDir,
		SourceDir:       source,
		ForceStatusline: installForceStatusline,
		Interactive:     interactive,
		Prompter:        selector,
		Naming:          &naming,
	})

	rep, err := inst.Install(cmd.Context())
	if rep != nil {
		printReport(out, rep)
	}
	switch {
	case err == nil:
	case errors.Is(err, install.ErrIncomplete):
		return errors.NewUserError(err, "Re-run with --source pointing at a complete distribution")
	case errors.Is(err, paths.ErrInvalidPath):
		return errors.NewUserError(err, "Check --config-dir and $"+paths.EnvConfigDir)
	default:
		return errors.NewSystemError(err, "")
	}

	fmt.Fprintf(out, "\n  %s Launch Claude Code and run %s.\n\n",
		color.GreenString("Done!"), color.CyanString("/"+naming.Namespace+":help"))
	return nil
}

// chooseScope applies the scope flags, prompting only on a terminal.
func chooseScope(cmd *cobra.Command, selector *prompt.Selector, interactive bool) (paths.Scope, error) {
	switch {
	case installLocal:
		return paths.ScopeLocal, nil
	case installGlobal, installConfigDir != "":
		return paths.ScopeGlobal, nil
	}

	out := cmd.OutOrStdout()
	if !interactive {
		fmt.Fprintf(out, "  %s\n\n", color.YellowString("Non-interactive terminal detected, defaulting to global install"))
		return paths.ScopeGlobal, nil
	}

	label := "~/" + paths.DefaultConfigRoot
	if dir, err := paths.Resolve(paths.ScopeGlobal, "", ""); err == nil {
		label = dir.Label()
	}
	scope, err := selector.Location(label)
	if errors.Is(err, prompt.ErrInputClosed) {
		fmt.Fprintf(out, "\n  %s\n\n", color.YellowString("Input stream closed, defaulting to global install"))
		return paths.ScopeGlobal, nil
	}
	if err != nil {
		return paths.ScopeGlobal, errors.NewSystemError(err, "")
	}
	return scope, nil
}

func printReport(w io.Writer, rep *install.Report) {
	check := color.GreenString("✓")
	if rep.Target != nil {
		fmt.Fprintf(w, "  Installing to %s\n\n", color.CyanString(rep.Target.Label()))
	}
	for _, o := range rep.Orphans {
		fmt.Fprintf(w, "  %s Removed orphaned %s\n", check, o)
	}
	for _, name := range rep.Installed {
		if name == "VERSION" {
			fmt.Fprintf(w, "  %s Wrote VERSION (%s)\n", check, rep.Version)
			continue
		}
		fmt.Fprintf(w, "  %s Installed %s\n", check, name)
	}
	if rep.RemovedHooks > 0 {
		fmt.Fprintf(w, "  %s Removed orphaned hook registrations\n", check)
	}
	if rep.HookAdded {
		fmt.Fprintf(w, "  %s Configured update check hook\n", check)
	}
	switch rep.StatusLine {
	case install.StatusLineInstalled, install.StatusLineReplaced:
		fmt.Fprintf(w, "  %s Configured statusline\n", check)
	case install.StatusLineSkipped:
		fmt.Fprintf(w, "  %s Skipping statusline (already configured)\n", color.YellowString("⚠"))
		fmt.Fprintf(w, "    Use %s to replace\n", color.CyanString("--force-statusline"))
	}
}
