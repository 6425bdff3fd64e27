// Package build assembles the plugin and npm distribution trees from the
// source repository.
//
// Each target is built from scratch into <dist>/<target>: the directory is
// removed, manifest entries are copied through the target's transforms, a
// VERSION stamp is written, and the result is validated. Validation collects
// every problem before failing.
package build
