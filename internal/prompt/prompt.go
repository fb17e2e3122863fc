// Package prompt provides line-based yes/no prompts for non-interactive terminals.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// maxAttempts is how many invalid answers Confirm tolerates before giving up.
const maxAttempts = 3

// ErrInvalidInput is returned when the user keeps answering something other than yes or no.
var ErrInvalidInput = errors.New("invalid input")

// Prompter asks the user for confirmation.
type Prompter interface {
	Confirm(prompt string, defaultValue bool) (bool, error)
}

// StdPrompter reads answers line by line.
type StdPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewStdPrompter creates a StdPrompter on stdin, writing prompts to stderr so
// stdout stays clean for scripted use.
func NewStdPrompter() *StdPrompter {
	return NewPrompter(os.Stdin, os.Stderr)
}

// NewPrompter creates a StdPrompter with custom reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *StdPrompter {
	return &StdPrompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Confirm asks a yes/no question. An empty answer selects defaultValue. Input
// that ends without a newline is still accepted; input that ends before any
// answer selects defaultValue.
func (p *StdPrompter) Confirm(prompt string, defaultValue bool) (bool, error) {
	hint := "y/N"
	if defaultValue {
		hint = "Y/n"
	}

	for range maxAttempts {
		if _, err := fmt.Fprintf(p.writer, "%s [%s]: ", prompt, hint); err != nil {
			return false, errors.Wrap(err, "failed to write prompt")
		}

		line, err := p.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, errors.Wrap(err, "failed to read input")
		}

		answer := strings.ToLower(strings.TrimSpace(line))

		switch answer {
		case "":
			return defaultValue, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if _, err := fmt.Fprintf(p.writer, "please answer y or n\n"); err != nil {
			return false, errors.Wrap(err, "failed to write prompt")
		}
	}

	return false, errors.Wrap(ErrInvalidInput, "expected y or n")
}
