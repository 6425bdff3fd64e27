// Package paths resolves the Claude configuration directories kata installs
// into and the user directories it reads configuration and caches from.
//
// # Scopes
//
// A global install targets the user's config directory, chosen in order from
// an explicit directory, the CLAUDE_CONFIG_DIR environment variable, and
// ~/.claude. A local install targets <project>/.claude.
//
// # Prefixes
//
// Installed markdown refers to other installed files through a path prefix.
// The default global install keeps the portable "~/.claude/" form; a custom
// directory uses its absolute path; a local install uses "./.claude/".
package paths
