package frontmatter

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingFrontmatter is returned by MustParse when no frontmatter is found.
var ErrMissingFrontmatter = errors.New("missing frontmatter")

// ErrUnterminated is returned when an opening delimiter has no closing one.
var ErrUnterminated = errors.New("missing closing frontmatter delimiter")

// Document is a markdown file split into its raw parts.
// Header + Body reproduces the input byte for byte.
type Document struct {
	// Header is the frontmatter including both "---" delimiter lines.
	// Empty when the file has no frontmatter.
	Header string
	// Body is everything after the closing delimiter line.
	Body string
}

// String joins the parts back together.
func (d Document) String() string {
	return d.Header + d.Body
}

// Split separates frontmatter from the body without parsing YAML, so text
// rewrites can target one part without reformatting the other.
// Content without a complete frontmatter block is returned entirely as Body.
func Split(content string) Document {
	first, rest, ok := cutLine(content)
	if !ok || strings.TrimRight(first, "\r\n") != "---" {
		return Document{Body: content}
	}

	offset := len(first)
	for rest != "" {
		line, next, _ := cutLine(rest)
		offset += len(line)
		if strings.TrimRight(line, "\r\n") == "---" {
			return Document{Header: content[:offset], Body: content[offset:]}
		}
		rest = next
	}
	return Document{Body: content}
}

// cutLine returns the first line of s including its newline.
// ok is false only for an empty string.
func cutLine(s string) (line, rest string, ok bool) {
	if s == "" {
		return "", "", false
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i+1], s[i+1:], true
	}
	return s, "", true
}

// Parse extracts YAML frontmatter and body content from a reader.
// If no frontmatter is present, returns empty struct and full content as body.
func Parse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but returns an error if no frontmatter is found.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := Split(string(content))
	if doc.Header == "" {
		if required {
			if bytes.HasPrefix(content, []byte("---")) {
				return nil, ErrUnterminated
			}
			return nil, ErrMissingFrontmatter
		}
		return content, nil
	}

	if err := yaml.Unmarshal([]byte(inner(doc.Header)), matter); err != nil {
		return nil, err
	}
	return []byte(trimLeadingNewline(doc.Body)), nil
}

// inner strips the delimiter lines from a header.
func inner(header string) string {
	_, rest, _ := cutLine(header)
	rest = strings.TrimRight(rest, "\r\n")
	return strings.TrimSuffix(rest, "---")
}

func trimLeadingNewline(s string) string {
	s = strings.TrimPrefix(s, "\r")
	return strings.TrimPrefix(s, "\n")
}

// ParseHeader parses only the frontmatter from the reader.
// It stops reading after the closing delimiter "---".
// Returns nil if no frontmatter is found (silent success, matter remains empty).
func ParseHeader(r io.Reader, matter any) error {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return scanner.Err()
	}
	if strings.TrimSpace(scanner.Text()) != "---" {
		return nil
	}

	var buf bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			return yaml.Unmarshal(buf.Bytes(), matter)
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return ErrUnterminated
}
