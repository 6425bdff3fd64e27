// Package validator collects the problems found while checking a build or
// install and reports them.
//
// Checks never stop at the first problem: every issue is recorded in a
// [Result] so one run shows everything that needs fixing.
//
//	res := &validator.Result{Subject: "plugin"}
//	if !fileutil.IsDir(filepath.Join(dist, "agents")) {
//		res.AddError("agents", "missing directory")
//	}
//	if res.HasErrors() {
//		return res.Err()
//	}
package validator
