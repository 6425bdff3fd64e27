// Package update checks the npm registry for a newer kata release and
// records the answer in a cache file the status line reads.
//
// The check runs in a detached child process at session start so the
// session never waits on the network. Every failure degrades to a result
// with an unknown latest version; nothing here reports errors to the user.
package update
