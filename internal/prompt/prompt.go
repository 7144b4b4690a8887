// Package prompt asks the operator questions on the terminal. When stdin is
// not a terminal nothing is shown: confirmations decline and text input
// fails with ErrNotInteractive.
package prompt

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// ErrNotInteractive is returned by Input when no terminal is attached.
var ErrNotInteractive = errors.New("no terminal attached to stdin")

// Prompter shows interactive prompts.
type Prompter struct {
	Interactive bool
}

// New returns a Prompter that is interactive when stdin is a terminal.
func New() *Prompter {
	return &Prompter{Interactive: IsTerminal(os.Stdin)}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm asks a yes/no question defaulting to no. Any failure to ask counts
// as a no.
func (p *Prompter) Confirm(msg string) bool {
	if !p.Interactive {
		return false
	}
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(msg)
	if err != nil {
		return false
	}
	return ok
}

// Input asks for a line of text. An empty answer yields def.
func (p *Prompter) Input(msg, def string) (string, error) {
	if !p.Interactive {
		return "", ErrNotInteractive
	}
	answer, err := pterm.DefaultInteractiveTextInput.WithDefaultValue(def).Show(msg)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
