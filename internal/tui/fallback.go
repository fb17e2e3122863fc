package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/smykla-skalski/cursor-updater/internal/prompt"
)

// FallbackUI implements UI using simple line prompts.
// This is used when the terminal is not interactive (CI, piped input, etc.).
type FallbackUI struct {
	prompter prompt.Prompter
	out      io.Writer
}

// NewFallbackUI creates a new FallbackUI instance.
func NewFallbackUI() *FallbackUI {
	return NewFallbackUIWithPrompter(prompt.NewStdPrompter(), os.Stderr)
}

// NewFallbackUIWithPrompter creates a FallbackUI with a custom prompter.
func NewFallbackUIWithPrompter(p prompt.Prompter, out io.Writer) *FallbackUI {
	return &FallbackUI{prompter: p, out: out}
}

// IsInteractive returns false as FallbackUI is for non-interactive terminals.
func (*FallbackUI) IsInteractive() bool {
	return false
}

// Confirm prints the description and asks on one line.
func (f *FallbackUI) Confirm(opts ConfirmOptions) (bool, error) {
	if opts.Description != "" {
		if _, err := fmt.Fprintln(f.out, opts.Description); err != nil {
			return false, err
		}
	}

	return f.prompter.Confirm(opts.Title, opts.Default)
}
