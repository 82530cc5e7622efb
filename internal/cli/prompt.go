package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// prompter separates interactive questions from the commands that need
// answers, so command logic stays testable without a terminal.
type prompter interface {
	// Confirm asks a yes/no question. Non-interactive sessions get the
	// default without blocking.
	Confirm(question string, def bool) bool
	// ReadLine asks for one line of input.
	ReadLine(prompt string) (string, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Confirm(question string, def bool) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return def
	}
	suffix := "[y/N]"
	if def {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(os.Stderr, "%s %s ", question, suffix)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func (terminalPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
