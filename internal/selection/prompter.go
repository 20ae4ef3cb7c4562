package selection

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

type line struct {
	text string
	err  error
}

// LinePrompter reads lines from an input stream. Reads happen on a
// background goroutine so a blocked read never holds up cancellation.
type LinePrompter struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan line
}

// NewLinePrompter returns a prompter that writes labels to out and reads
// answers from in.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out, lines: make(chan line)}
}

func (p *LinePrompter) read() {
	sc := bufio.NewScanner(p.in)
	for sc.Scan() {
		p.lines <- line{text: sc.Text()}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	p.lines <- line{err: err}
	close(p.lines)
}

// Prompt implements Prompter.
func (p *LinePrompter) Prompt(ctx context.Context, label string) (string, error) {
	p.once.Do(func() { go p.read() })
	fmt.Fprint(p.out, label)

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}
