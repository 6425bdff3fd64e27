//go:build !unix

package update

import "syscall"

func detached() *syscall.SysProcAttr {
	return nil
}
