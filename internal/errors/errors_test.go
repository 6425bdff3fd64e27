package errors

import (
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(Wrap(ErrInvalidConfig, "loading config"), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitSystem),
			want: "exit code 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	err := NewUserError(Wrapf(ErrUnknownTarget, "target %q", "docs"), "Use plugin, npm or all")
	if !Is(err, ErrUnknownTarget) {
		t.Error("errors.Is() should find ErrUnknownTarget through ExitError")
	}
	if Is(err, ErrConflictingFlags) {
		t.Error("errors.Is() matched an unrelated sentinel")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", New("boom"), ExitUser},
		{"user error", NewUserError(ErrConflictingFlags, ""), ExitUser},
		{"system error", NewSystemError(ErrNotFound, ""), ExitSystem},
		{"wrapped system error", fmt.Errorf("install: %w", NewSystemError(ErrNotFound, "")), ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	if e := NewConfigError(ErrInvalidConfig); e.Code != ExitUser || e.Suggestion == "" {
		t.Errorf("NewConfigError() = %+v, want ExitUser with suggestion", e)
	}
	if e := NewSystemError(ErrNotFound, "check permissions"); e.Suggestion != "check permissions" {
		t.Errorf("Suggestion = %q, want %q", e.Suggestion, "check permissions")
	}
}
