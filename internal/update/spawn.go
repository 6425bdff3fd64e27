package update

import (
	"os/exec"

	"github.com/gannonh/kata/internal/errors"
)

// Spawn starts exe with args in a new session, detached from the caller's
// terminal and standard streams, and returns without waiting for it.
func Spawn(exe string, args ...string) error {
	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = detached()
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", exe)
	}
	return errors.Wrap(cmd.Process.Release(), "releasing child process")
}
