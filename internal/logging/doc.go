// Package logging is the slog setup behind kata's build and install
// progress output.
//
// Progress goes to stderr through [Handler], which turns the [ScopeKeys]
// attributes into a line prefix:
//
//	9:41PM INFO  [plugin] copied path=skills files=12
//	9:41PM WARN  [npm] skipped path=hooks/dist reason="not found"
//	9:41PM INFO  [global/agents] installed
//
// Each -v raises the level ([LevelFromVerbosity]). At [LevelTrace] the
// copier reports every file it writes or rewrites. With --log-file the
// same records are also written as JSON through [MultiHandler].
//
// Loggers travel in the context. Builders and installers read theirs with
// [FromContext], and tests attach [ForTest] so output shows up only on
// failure.
package logging
