package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gannonh/kata/internal/errors"
)

// Severity represents the impact of an issue.
type Severity int

const (
	// SeverityError fails the check.
	SeverityError Severity = iota
	// SeverityWarning is reported but does not fail the check.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return errors.Newf("unknown severity %q", name)
	}
	return nil
}

// Issue is a single problem.
type Issue struct {
	Severity Severity `json:"severity"`
	// Path is the slash-separated location the issue refers to, relative to
	// the checked tree. Empty for tree-wide issues.
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Result aggregates issues for one subject, such as a build target.
type Result struct {
	Subject string  `json:"subject,omitempty"`
	Issues  []Issue `json:"issues"`
}

// AddError records a failing issue.
func (r *Result) AddError(path, message string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, Path: path, Message: message})
}

// AddErrorf records a failing issue with a formatted message.
func (r *Result) AddErrorf(path, format string, args ...any) {
	r.AddError(path, fmt.Sprintf(format, args...))
}

// AddWarning records a non-failing issue.
func (r *Result) AddWarning(path, message string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Path: path, Message: message})
}

// Merge appends the issues of o.
func (r *Result) Merge(o *Result) {
	if o == nil {
		return
	}
	r.Issues = append(r.Issues, o.Issues...)
}

// HasErrors reports whether any issue is an error.
func (r *Result) HasErrors() bool { return len(r.Errors()) > 0 }

// HasWarnings reports whether any issue is a warning.
func (r *Result) HasWarnings() bool { return len(r.Warnings()) > 0 }

// Errors returns the error issues in the order they were added.
func (r *Result) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning issues in the order they were added.
func (r *Result) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r *Result) filter(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Err returns nil when there are no errors, otherwise an error listing
// every error issue.
func (r *Result) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	subject := "validation"
	if r.Subject != "" {
		subject = r.Subject
	}
	return errors.Newf("%s: %d error(s): %s", subject, len(errs), strings.Join(msgs, "; "))
}
