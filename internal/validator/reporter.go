package validator

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gannonh/kata/internal/errors"
)

// Format specifies the output format for reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Newf("unknown report format %q (want text or json)", s)
	}
}

// Reporter formats and writes results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{out: out, format: format}
}

// Report writes the results. JSON output is a single array.
func (r *Reporter) Report(results ...*Result) error {
	if r.format == FormatJSON {
		list := make([]*Result, 0, len(results))
		for _, res := range results {
			if res != nil {
				list = append(list, res)
			}
		}
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(list), "encoding JSON report")
	}

	for _, res := range results {
		if res != nil {
			r.reportText(res)
		}
	}
	return nil
}

func (r *Reporter) reportText(res *Result) {
	name := res.Subject
	if name == "" {
		name = "validation"
	}

	errs := res.Errors()
	warns := res.Warnings()

	switch {
	case len(errs) > 0:
		fmt.Fprintf(r.out, "%s %s: %s\n", color.RedString("✗"), name, color.RedString("%d error(s)", len(errs)))
	default:
		fmt.Fprintf(r.out, "%s %s\n", color.GreenString("✓"), name)
	}

	for _, i := range errs {
		r.printIssue(i, color.FgRed)
	}
	for _, i := range warns {
		r.printIssue(i, color.FgYellow)
	}
}

func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	mark := color.New(c).SprintFunc()
	if i.Path == "" {
		fmt.Fprintf(r.out, "  %s %s\n", mark("•"), i.Message)
		return
	}
	fmt.Fprintf(r.out, "  %s %s: %s\n", mark("•"), i.Path, i.Message)
}
