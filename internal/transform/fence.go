package transform

import (
	"strings"
)

// OutsideFences applies rule only to text that is not inside a fenced code
// block. A fence opens with a line whose first non-blank characters are at
// least three backticks or tildes and closes with a line of the same
// character at least as long. An unclosed fence runs to the end of the file.
func OutsideFences(rule Rule) Rule {
	return func(s string) string {
		var out strings.Builder
		out.Grow(len(s))

		var (
			pending strings.Builder // text outside fences not yet rewritten
			fence   string          // current opening marker, empty when outside
		)
		flush := func() {
			if pending.Len() > 0 {
				out.WriteString(rule(pending.String()))
				pending.Reset()
			}
		}

		for rest := s; rest != ""; {
			var line string
			if i := strings.IndexByte(rest, '\n'); i >= 0 {
				line, rest = rest[:i+1], rest[i+1:]
			} else {
				line, rest = rest, ""
			}

			marker := fenceMarker(line)
			switch {
			case fence == "" && marker != "":
				flush()
				fence = marker
				out.WriteString(line)
			case fence != "":
				out.WriteString(line)
				if closesFence(line, fence) {
					fence = ""
				}
			default:
				pending.WriteString(line)
			}
		}
		flush()
		return out.String()
	}
}

// fenceMarker returns the run of backticks or tildes opening a fence on
// line, or "" if line is not a fence line. Up to three spaces of
// indentation are allowed, as in CommonMark.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	// A backtick fence's info string may not contain backticks.
	if c == '`' && strings.Contains(trimmed[n:], "`") {
		return ""
	}
	return trimmed[:n]
}

func closesFence(line, open string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(open) {
		return false
	}
	return strings.Trim(trimmed, open[:1]) == ""
}
