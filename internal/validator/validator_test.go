package validator

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityError, "error"},
		{SeverityWarning, "warning"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.s.String(); got != tt.want {
				t.Errorf("Severity.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeverity_JSON(t *testing.T) {
	data, err := json.Marshal(Issue{Severity: SeverityWarning, Message: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"severity":"warning"`) {
		t.Errorf("Marshal() = %s", data)
	}

	var i Issue
	if err := json.Unmarshal(data, &i); err != nil {
		t.Fatal(err)
	}
	if i.Severity != SeverityWarning {
		t.Errorf("Severity = %v, want warning", i.Severity)
	}

	if err := json.Unmarshal([]byte(`{"severity":"fatal"}`), &i); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestIssue_Error(t *testing.T) {
	tests := []struct {
		i    Issue
		want string
	}{
		{Issue{Path: "agents", Message: "missing directory"}, "agents: missing directory"},
		{Issue{Message: "no version"}, "no version"},
	}
	for _, tt := range tests {
		if got := tt.i.Error(); got != tt.want {
			t.Errorf("Issue.Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestResult(t *testing.T) {
	r := &Result{Subject: "plugin"}
	if r.HasErrors() || r.Err() != nil {
		t.Fatal("empty result reports errors")
	}

	r.AddWarning("package.json", "version is not semver")
	if r.HasErrors() || !r.HasWarnings() {
		t.Error("warning counted as error")
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil with only warnings", r.Err())
	}

	r.AddError("agents", "missing directory")
	r.AddErrorf("skills", "missing %s", "directory")

	other := &Result{}
	other.AddError("", "VERSION mismatch")
	r.Merge(other)
	r.Merge(nil)

	if got := len(r.Errors()); got != 3 {
		t.Fatalf("len(Errors()) = %d, want 3", got)
	}
	if got := len(r.Warnings()); got != 1 {
		t.Errorf("len(Warnings()) = %d, want 1", got)
	}

	err := r.Err()
	if err == nil {
		t.Fatal("Err() = nil")
	}
	for _, want := range []string{"plugin", "3 error(s)", "agents: missing directory", "skills: missing directory", "VERSION mismatch"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Err() = %q, missing %q", err, want)
		}
	}
}

func TestResult_Nil(t *testing.T) {
	var r *Result
	if r.HasErrors() || r.HasWarnings() || r.Err() != nil {
		t.Error("nil Result reports issues")
	}
}
