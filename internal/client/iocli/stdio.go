package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio is the terminal implementation of IO. Input comes from a single
// buffered reader; password reads bypass it and go straight to the
// terminal with echo disabled.
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

var _ IO = (*Stdio)(nil)

// NewStdio wires the process's standard streams.
func NewStdio() *Stdio {
	return &Stdio{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
		fd:  int(os.Stdin.Fd()),
	}
}

func (s *Stdio) Println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !term.IsTerminal(s.fd) {
		// Piped input (tests, scripts): fall back to a plain line read.
		return s.ReadInput("")
	}
	pw, err := term.ReadPassword(s.fd)
	fmt.Fprintln(s.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
