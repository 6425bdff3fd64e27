// Package schema validates the JSON manifests shipped in a distribution
// against embedded JSON schemas.
package schema

import (
	"bytes"
	"embed"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gannonh/kata/internal/errors"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	pluginSchema  = "plugin.schema.json"
	packageSchema = "package.schema.json"
)

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
	printer     = message.NewPrinter(language.English)
)

// Issue is one schema violation.
type Issue struct {
	// Path is the JSON pointer of the offending value, "" for the document root.
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

func schemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		names := []string{pluginSchema, packageSchema}
		for _, name := range names {
			data, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = errors.Wrapf(err, "reading %s", name)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = errors.Wrapf(err, "parsing %s", name)
				return
			}
			if err := c.AddResource(name, doc); err != nil {
				compileErr = errors.Wrapf(err, "adding %s", name)
				return
			}
		}

		out := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			s, err := c.Compile(name)
			if err != nil {
				compileErr = errors.Wrapf(err, "compiling %s", name)
				return
			}
			out[name] = s
		}
		compiled = out
	})
	return compiled, compileErr
}

// ValidatePlugin checks a .claude-plugin/plugin.json document.
// The error is for unparseable input; violations are returned as issues.
func ValidatePlugin(data []byte) ([]Issue, error) {
	return validate(pluginSchema, data)
}

// ValidatePackage checks a package.json document.
func ValidatePackage(data []byte) ([]Issue, error) {
	return validate(packageSchema, data)
}

func validate(name string, data []byte) ([]Issue, error) {
	all, err := schemas()
	if err != nil {
		return nil, errors.Wrap(err, "loading schemas")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing JSON")
	}

	err = all[name].Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, errors.Wrap(err, "validating")
	}

	var issues []Issue
	collect(ve, &issues)
	if len(issues) == 0 {
		issues = append(issues, Issue{Message: ve.Error()})
	}
	slices.SortFunc(issues, func(a, b Issue) int {
		return strings.Compare(a.String(), b.String())
	})
	return slices.Compact(issues), nil
}

// collect appends the leaf errors of ve. Container keywords only say that a
// branch failed, so they are skipped in favor of their causes.
func collect(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collect(c, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}

	kw := ve.ErrorKind.KeywordPath()
	if len(kw) > 0 {
		switch kw[len(kw)-1] {
		case "oneOf", "anyOf", "allOf", "$ref":
			return
		}
	}

	p := ""
	if len(ve.InstanceLocation) > 0 {
		p = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	*issues = append(*issues, Issue{Path: p, Message: ve.ErrorKind.LocalizedString(printer)})
}
