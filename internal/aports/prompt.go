package aports

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user a yes/no question
type Prompter interface {
	Confirm(question string) (bool, error)
}

// LinePrompter reads answers line by line. "true", "yes" and "y" confirm.
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewLinePrompter creates a prompter reading from in and asking on out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(in), out: out}
}

// Confirm prints question and reads one answer. End of input answers no.
func (p *LinePrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s ", question)
	answer, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return IsAffirmative(answer), nil
}

// IsAffirmative reports whether answer is one of true, yes or y
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "true", "yes", "y":
		return true
	}
	return false
}
