package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for a single line of input.
// secret requests no-echo input where the terminal supports it.
type Prompter interface {
	Prompt(label string, secret bool) (string, error)
}

// TerminalPrompter prompts on stderr and reads from stdin.
type TerminalPrompter struct {
	in    *bufio.Reader
	out   io.Writer
	stdin *os.File
}

// NewTerminalPrompter creates a prompter bound to the process terminal.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stderr,
		stdin: os.Stdin,
	}
}

// Prompt prints label and returns the trimmed answer
func (p *TerminalPrompter) Prompt(label string, secret bool) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	fd := int(p.stdin.Fd())
	if secret && term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
