// Package cmd holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/gannonh/kata/cmd.Version=1.8.0"
package cmd

import "fmt"

var (
	// Version is the released version of the binary.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// Info renders the multi-line version report.
func Info() string {
	return fmt.Sprintf("kata version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
