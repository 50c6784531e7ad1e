package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/scrapify/internal/shared"
	"github.com/mattn/go-isatty"
)

// Prompter asks the user for input.
type Prompter interface {
	shared.Asker
	Confirm(question string) (bool, error)
}

var (
	_ Prompter = (*TeaPrompter)(nil)
	_ Prompter = (*LinePrompter)(nil)
)

// NewPrompter returns a [TeaPrompter] when in is a terminal and a [LinePrompter] otherwise.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	fd := in.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return NewTeaPrompter(in, out)
	}
	return NewLinePrompter(in, out)
}

// LinePrompter reads answers line by line.
type LinePrompter struct {
	r   *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a [LinePrompter] reading from in and writing questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask implements [Prompter]. End of input is [shared.ErrMissingArgument].
func (p *LinePrompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)

	answer, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: no answer to %q", shared.ErrMissingArgument, strings.TrimSpace(question))
	}
	return answer, err
}

// Confirm implements [Prompter]. An empty answer or one starting with y is a yes; end of input is a no.
func (p *LinePrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [Y/n] ", question)

	answer, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return answer == "" || strings.HasPrefix(strings.ToLower(answer), "y"), nil
}
