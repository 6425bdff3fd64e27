// Package transform implements the ordered text rewrites applied to markdown
// files while building a distribution or installing one.
//
// Every rule is a pure func(string) string. Rules are composed with [Chain]
// and run in the order given; later rules see the output of earlier ones.
// Reference rewrites skip fenced code blocks (see [OutsideFences]) so that
// documentation showing the unrewritten form survives the build. Name
// rewrites only touch frontmatter (see [InHeader]).
package transform

import (
	"regexp"
	"strings"

	"github.com/gannonh/kata/pkg/frontmatter"
)

// Rule rewrites markdown content.
type Rule func(string) string

// Chain returns a rule applying rules left to right. Nil rules are skipped.
func Chain(rules ...Rule) Rule {
	return func(s string) string {
		for _, r := range rules {
			if r != nil {
				s = r(s)
			}
		}
		return s
	}
}

// Identity returns its input unchanged.
func Identity(s string) string { return s }

// Naming carries the identifiers the rules are built from.
type Naming struct {
	// Namespace is the plugin name the host prefixes resources with (e.g. "kata").
	Namespace string
	// ConfigRoot is the host's home config directory name (e.g. ".claude").
	ConfigRoot string
}

// DefaultNaming is the naming used when nothing is configured.
var DefaultNaming = Naming{Namespace: "kata", ConfigRoot: ".claude"}

// ResourcePrefix is the absolute-style reference that bundled resources are
// written with in source, e.g. "@~/.claude/kata/".
func (n Naming) ResourcePrefix() string {
	return "@~/" + n.ConfigRoot + "/" + n.Namespace + "/"
}

// HomeReference is the home-relative reference prefix that must not survive
// a plugin build, e.g. "@~/.claude/".
func (n Naming) HomeReference() string {
	return "@~/" + n.ConfigRoot + "/"
}

// ResourceRefs rewrites "@~/.claude/kata/..." to "@./kata/..." outside fenced code.
func (n Naming) ResourceRefs() Rule {
	from := n.ResourcePrefix()
	to := "@./" + n.Namespace + "/"
	return OutsideFences(func(s string) string {
		return strings.ReplaceAll(s, from, to)
	})
}

// AgentRefs rewrites subagent_type="kata-x" to subagent_type="kata:kata-x".
// The host namespaces plugin agents by plugin name but keeps the file name.
func (n Naming) AgentRefs() Rule {
	from := `subagent_type="` + n.Namespace + "-"
	to := `subagent_type="` + n.Namespace + ":" + n.Namespace + "-"
	return OutsideFences(func(s string) string {
		return strings.ReplaceAll(s, from, to)
	})
}

// SkillRefs rewrites Skill("kata-x") to Skill("kata:x").
// Plugin skill directories lose their prefix, so the invocation must too.
func (n Naming) SkillRefs() Rule {
	from := `Skill("` + n.Namespace + "-"
	to := `Skill("` + n.Namespace + ":"
	return OutsideFences(func(s string) string {
		return strings.ReplaceAll(s, from, to)
	})
}

// SkillName strips "kata-" from the name field of a SKILL.md frontmatter.
func (n Naming) SkillName() Rule {
	re := regexp.MustCompile(`(?m)^(name:[ \t]*["']?)` + regexp.QuoteMeta(n.Namespace) + `-`)
	return InHeader(func(h string) string {
		return re.ReplaceAllString(h, "${1}")
	})
}

// CommandName strips "kata:" or "kata-" from the name field of a command's frontmatter.
func (n Naming) CommandName() Rule {
	re := regexp.MustCompile(`(?m)^(name:[ \t]*["']?)` + regexp.QuoteMeta(n.Namespace) + `[:\-]`)
	return InHeader(func(h string) string {
		return re.ReplaceAllString(h, "${1}")
	})
}

// StripPrefix returns name without the "kata-" prefix. Used to rename skill
// directories for the plugin target; other names pass through.
func (n Naming) StripPrefix(name string) string {
	return strings.TrimPrefix(name, n.Namespace+"-")
}

// HasPrefix reports whether name follows the tool's own naming convention.
func (n Naming) HasPrefix(name string) bool {
	return strings.HasPrefix(name, n.Namespace+"-")
}

// PluginBody is the chain applied to every plugin markdown file.
func (n Naming) PluginBody() Rule {
	return Chain(n.ResourceRefs(), n.AgentRefs(), n.SkillRefs())
}

// HomePrefix rewrites "~/.claude/" to prefix at install time.
// Unlike the plugin rules this applies inside fences too: installed
// examples must point at the real install location.
func (n Naming) HomePrefix(prefix string) Rule {
	from := "~/" + n.ConfigRoot + "/"
	if prefix == from {
		return Identity
	}
	return func(s string) string {
		return strings.ReplaceAll(s, from, prefix)
	}
}

// InHeader applies rule to the frontmatter only. Files without frontmatter
// are returned unchanged.
func InHeader(rule Rule) Rule {
	return func(s string) string {
		doc := frontmatter.Split(s)
		if doc.Header == "" {
			return s
		}
		doc.Header = rule(doc.Header)
		return doc.String()
	}
}
