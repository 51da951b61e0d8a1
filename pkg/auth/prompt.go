package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// Prompter collects archive credentials interactively. Passwords are read
// with terminal echo disabled when stdin is a terminal.
type Prompter struct {
	in    *os.File
	lines *bufio.Reader
	out   io.Writer
}

// NewPrompter creates a prompter bound to stdin and stdout
func NewPrompter() *Prompter {
	return &Prompter{
		in:    os.Stdin,
		lines: bufio.NewReader(os.Stdin),
		out:   os.Stdout,
	}
}

// PromptAccount asks for whichever credential half is still missing. A
// non-empty username is kept as given and only the password is requested.
func (p *Prompter) PromptAccount(username string) (*Account, error) {
	var err error
	if username == "" {
		username, err = p.promptLine("Enter your username: ")
		if err != nil {
			return nil, err
		}
	}

	password, err := p.promptPassword("Enter your password: ")
	if err != nil {
		return nil, err
	}

	return &Account{
		Username:     username,
		Password:     password,
		LastModified: time.Now(),
	}, nil
}

// promptLine reads one non-empty line, asking again on empty input
func (p *Prompter) promptLine(prompt string) (string, error) {
	for {
		fmt.Fprint(p.out, prompt)
		line, err := p.lines.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
	}
}

// promptPassword reads a password without echoing it back
func (p *Prompter) promptPassword(prompt string) (string, error) {
	fd := int(p.in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(p.out, prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	// Piped input falls back to a plain line read
	return p.promptLine(prompt)
}
