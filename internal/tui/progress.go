package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/litescript/torrench/internal/engine"
	"github.com/mattn/go-isatty"
)

// Reporter is an engine.Reporter that must be stopped before anything else
// writes to the terminal.
type Reporter interface {
	engine.Reporter
	Stop()
}

// NewReporter returns a spinner on terminals and plain progress lines
// otherwise.
func NewReporter(ctx context.Context, out *os.File) Reporter {
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return newSpinnerReporter(ctx, out)
	}
	return &PlainReporter{Out: out}
}

// PlainReporter writes one line per event. Pages may be reported from
// several goroutines when fetching in parallel.
type PlainReporter struct {
	Out io.Writer
	mu  sync.Mutex
}

func (r *PlainReporter) linef(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.Out, format+"\n", args...)
}

func (r *PlainReporter) ProbeStarted(c string) {
	r.linef("Trying %s", c)
}

func (r *PlainReporter) ProbeFinished(c string, ok bool) {
	if ok {
		r.linef("Connected to %s", c)
		return
	}
	r.linef("Failed: %s", c)
}

func (r *PlainReporter) PageStarted(page, total int) {
	r.linef("Fetching page %d/%d", page, total)
}

func (r *PlainReporter) PageFetched(page int, elapsed time.Duration) {
	r.linef("Page %d [in %.2f sec]", page, elapsed.Seconds())
}

func (r *PlainReporter) Stop() {}

type statusMsg string

type doneMsg struct{}

type progressModel struct {
	spinner spinner.Model
	status  string
	done    bool
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = string(msg)
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.status
}

// spinnerReporter drives a bubbletea program without input so the
// selection prompt keeps stdin to itself.
type spinnerReporter struct {
	p    *tea.Program
	done chan struct{}
}

func newSpinnerReporter(ctx context.Context, out io.Writer) *spinnerReporter {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = GetStyles().Spinner

	r := &spinnerReporter{
		p: tea.NewProgram(progressModel{spinner: sp, status: "Starting..."},
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithContext(ctx),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		_, _ = r.p.Run()
	}()
	return r
}

func (r *spinnerReporter) ProbeStarted(c string) {
	r.p.Send(statusMsg("Trying " + c))
}

func (r *spinnerReporter) ProbeFinished(c string, ok bool) {
	if ok {
		r.p.Println(Success("✓ Connected to " + c))
		return
	}
	r.p.Println(Failure("✗ " + c))
}

func (r *spinnerReporter) PageStarted(page, total int) {
	r.p.Send(statusMsg(fmt.Sprintf("Fetching page %d/%d", page, total)))
}

func (r *spinnerReporter) PageFetched(page int, elapsed time.Duration) {
	r.p.Println(Muted(fmt.Sprintf("  page %d [in %.2f sec]", page, elapsed.Seconds())))
}

// Stop ends the program and waits for the terminal to be released.
func (r *spinnerReporter) Stop() {
	r.p.Send(doneMsg{})
	<-r.done
}
