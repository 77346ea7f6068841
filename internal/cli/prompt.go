package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNoInput is returned when a prompt hits end of input.
var errNoInput = errors.New("no input")

// Terminal hooks, replaced in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// prompter reads answers line by line from the command's stdin.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	tty int // stdin file descriptor when it is a terminal, else -1
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout(), tty: -1}
	if f, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(int(f.Fd())) {
		p.tty = int(f.Fd())
	}
	return p
}

// ask prints label and returns the trimmed answer.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			fmt.Fprintln(p.out)
			return "", errNoInput
		}
	}
	return strings.TrimSpace(line), nil
}

// fill prompts for *v when it is empty.
func (p *prompter) fill(v *string, label string) error {
	if *v != "" {
		return nil
	}
	answer, err := p.ask(label)
	if err != nil {
		return err
	}
	*v = answer
	return nil
}

// fillSecret is fill without echo when stdin is a terminal.
func (p *prompter) fillSecret(v *string, label string) error {
	if *v != "" || p.tty < 0 {
		return p.fill(v, label)
	}
	fmt.Fprint(p.out, label)
	answer, err := readPassword(p.tty)
	fmt.Fprintln(p.out)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	*v = strings.TrimSpace(string(answer))
	return nil
}

// confirm asks a yes/no question; anything but y/yes is no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question + " [y/N]: ")
	if errors.Is(err, errNoInput) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
