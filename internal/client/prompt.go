package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when the input ends while a prompt is waiting.
var ErrInputClosed = errors.New("input closed")

// Prompter reads line-oriented answers from in and writes prompts to out.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter wraps in and out. The shell and credential prompts must share
// one Prompter so buffered input is not lost between them.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line prints prompt and returns the next input line, trimmed.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Credentials asks for a username and password.
func (p *Prompter) Credentials() (username, password string, err error) {
	username, err = p.Line("Username: ")
	if err != nil {
		return "", "", err
	}
	password, err = p.Line("Password: ")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}
