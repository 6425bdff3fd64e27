// Package prompt provides the installer's interactive numbered prompts.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/paths"
)

// ErrInputClosed is returned when input ends before an answer is read.
// Callers fall back to the default choice.
var ErrInputClosed = errors.New("input closed")

// Selector asks numbered questions.
type Selector struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stdout)
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// choice reads one answer line. An empty answer returns def.
func (s *Selector) choice(def string) (string, error) {
	fmt.Fprintf(s.writer, "  Choice %s: ", color.New(color.Faint).Sprintf("[%s]", def))

	line, err := s.reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", errors.Wrap(err, "reading choice")
		}
		// A final line without a newline still counts.
		if line == "" {
			fmt.Fprintln(s.writer)
			return "", ErrInputClosed
		}
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Location asks where to install. Any answer other than 2 means global.
// On ErrInputClosed the returned scope is ScopeGlobal.
func (s *Selector) Location(globalLabel string) (paths.Scope, error) {
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(s.writer, "  %s\n\n", color.YellowString("Where would you like to install?"))
	fmt.Fprintf(s.writer, "  %s) Global %s - available in all projects\n", cyan("1"), dim("("+globalLabel+")"))
	fmt.Fprintf(s.writer, "  %s) Local  %s - this project only\n\n", cyan("2"), dim("(./.claude)"))

	answer, err := s.choice("1")
	if err != nil {
		return paths.ScopeGlobal, err
	}
	if answer == "2" {
		return paths.ScopeLocal, nil
	}
	return paths.ScopeGlobal, nil
}

// StatusLine asks whether to replace an existing status line. Only an
// answer of 2 replaces it.
func (s *Selector) StatusLine(existing string) (bool, error) {
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(s.writer, "\n  %s Existing statusline detected\n\n", color.YellowString("⚠"))
	fmt.Fprintf(s.writer, "  Your current statusline:\n    %s\n\n", dim("command: "+existing))
	fmt.Fprintf(s.writer, "  %s) Keep existing\n", cyan("1"))
	fmt.Fprintf(s.writer, "  %s) Replace with Kata statusline\n\n", cyan("2"))

	answer, err := s.choice("1")
	if err != nil {
		return false, err
	}
	return answer == "2", nil
}
