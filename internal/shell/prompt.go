package shell

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// prompter reads free-text answers from the terminal. Password entry is
// masked when stdin is a real terminal and falls back to a plain line read
// otherwise, which keeps the shell scriptable in tests.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	text, err := p.in.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// validated re-prompts until validate accepts the answer.
func (p *prompter) validated(label string, validate func(string) bool, invalidMsg string) (string, error) {
	for {
		text, err := p.line(label)
		if err != nil {
			return "", err
		}
		if validate(text) {
			return text, nil
		}
		fmt.Fprintln(p.out, invalidMsg)
	}
}

func (p *prompter) amount(label string) (float64, error) {
	for {
		text, err := p.line(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			fmt.Fprintln(p.out, "Please enter a number.")
			continue
		}
		return v, nil
	}
}

func (p *prompter) password(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.line(label)
	}

	fmt.Fprint(p.out, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
