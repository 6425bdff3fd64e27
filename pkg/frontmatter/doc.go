// Package frontmatter splits and parses the YAML frontmatter of markdown
// skill, agent and command files.
//
// [Split] works on raw text and is what the build transforms use: rules that
// rewrite declared names only touch the header, rules that rewrite
// references only touch the body, and Header+Body always reproduces the
// input byte for byte.
//
//	doc := frontmatter.Split(content)
//	doc.Header = stripName(doc.Header)
//	content = doc.String()
//
// [Parse], [MustParse] and [ParseHeader] decode the header with
// gopkg.in/yaml.v3 for validation.
package frontmatter
