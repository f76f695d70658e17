// Package credentials resolves the username and password used for basic
// auth against a tenant. Each value comes from an explicit flag, then an
// environment variable, then an interactive prompt.
package credentials

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

const (
	// UsernameEnvVar supplies the username when no flag is given.
	UsernameEnvVar = "TAPIS_USERNAME"
	// PasswordEnvVar supplies the password when no flag is given.
	PasswordEnvVar = "TAPIS_PASSWORD"
)

// Prompter reads values interactively.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

// Resolver looks up credentials.
type Resolver struct {
	prompter Prompter
	getenv   func(string) string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPrompter replaces the interactive prompter.
func WithPrompter(p Prompter) Option {
	return func(r *Resolver) {
		r.prompter = p
	}
}

// WithGetenv replaces the environment lookup.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

// NewResolver creates a Resolver reading the process environment and
// prompting on the terminal.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		prompter: &TerminalPrompter{},
		getenv:   os.Getenv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Username returns explicit if set, else TAPIS_USERNAME, else asks.
func (r *Resolver) Username(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := r.getenv(UsernameEnvVar); v != "" {
		return v, nil
	}

	username, err := r.prompter.ReadLine("Username: ")
	if err != nil {
		return "", fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username cannot be empty")
	}
	return username, nil
}

// Password returns explicit if set, else TAPIS_PASSWORD, else asks without
// echoing. In quiet mode the prompt text is suppressed.
func (r *Resolver) Password(explicit string, quiet bool) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := r.getenv(PasswordEnvVar); v != "" {
		return v, nil
	}

	prompt := "Password: "
	if quiet {
		prompt = ""
	}
	password, err := r.prompter.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// TerminalPrompter prompts on the controlling terminal using readline.
type TerminalPrompter struct{}

// ReadLine reads a single line of input.
func (p *TerminalPrompter) ReadLine(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	return rl.Readline()
}

// ReadPassword reads a line of input without echoing it.
func (p *TerminalPrompter) ReadPassword(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	password, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(password), nil
}
