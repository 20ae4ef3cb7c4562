// Package selection runs the pick-an-index, pick-an-action loop over the
// results of a session.
package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/litescript/torrench/internal/engine"
)

// State is where the controller is in the selection loop.
type State int

const (
	AwaitingIndex State = iota
	Dispatching
	Exit
)

func (s State) String() string {
	switch s {
	case AwaitingIndex:
		return "awaiting-index"
	case Dispatching:
		return "dispatching"
	case Exit:
		return "exit"
	}
	return "unknown"
}

// Prompter shows label and returns one line of input. io.EOF and context
// errors end the loop without error.
type Prompter interface {
	Prompt(ctx context.Context, label string) (string, error)
}

// Dispatcher carries out an action on a selected result.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind engine.ActionKind, index int, d engine.Detail) error
}

// Controller drives selection for one session.
type Controller struct {
	Index    *engine.IndexMap
	Actions  []engine.ActionKind
	Prompter Prompter
	Dispatch Dispatcher
	Out      io.Writer
	Log      *slog.Logger

	state    State
	selected int
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Run loops until the user exits, input ends, or ctx is cancelled. None of
// those is an error; Run only fails on unexpected prompter errors.
func (c *Controller) Run(ctx context.Context) error {
	if c.Log == nil {
		c.Log = slog.New(slog.DiscardHandler)
	}
	c.state = AwaitingIndex

	for c.state != Exit {
		var err error
		switch c.state {
		case AwaitingIndex:
			err = c.awaitIndex(ctx)
		case Dispatching:
			err = c.dispatch(ctx)
		}
		if err != nil {
			c.state = Exit
			if isEnd(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

func isEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Controller) awaitIndex(ctx context.Context) error {
	line, err := c.Prompter.Prompt(ctx, "\nEnter torrent's index value (0 to exit): ")
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	switch {
	case err != nil:
		c.badInput(line, "Bad input! Enter an integer index.")
	case n == 0:
		c.state = Exit
	case n < 0:
		c.badInput(line, "Bad input! Index cannot be negative.")
	default:
		if _, ok := c.Index.Lookup(n); !ok {
			c.badInput(line, fmt.Sprintf("Bad input! Index [%d] is out of range (1-%d).", n, c.Index.Len()))
			return nil
		}
		c.selected = n
		c.state = Dispatching
	}
	return nil
}

func (c *Controller) badInput(line, msg string) {
	c.Log.Debug("rejected selection", "input", line, "err", engine.ErrBadSelection)
	fmt.Fprintln(c.Out, msg)
}

// dispatch shows the menu for the selected index and runs one action. An
// unknown letter re-prompts for the same selection; 0 goes back.
func (c *Controller) dispatch(ctx context.Context) error {
	d, _ := c.Index.Lookup(c.selected)
	fmt.Fprintf(c.Out, "\nSelected index [%d] - %s\n", c.selected, d.Name)
	fmt.Fprint(c.Out, Menu(c.Actions))

	for {
		line, err := c.Prompter.Prompt(ctx, "Option: ")
		if err != nil {
			return err
		}
		key := strings.ToLower(strings.TrimSpace(line))
		if key == "0" {
			c.state = AwaitingIndex
			return nil
		}

		kind, ok := c.lookupAction(key)
		if !ok {
			c.badInput(line, "Bad input! Choose one of the options above.")
			continue
		}

		log := c.Log.With("index", c.selected, "action", kind.Key())
		if err := c.Dispatch.Dispatch(ctx, kind, c.selected, d); err != nil {
			if isEnd(err) {
				return err
			}
			log.Warn("action failed", "err", err)
			fmt.Fprintln(c.Out, engine.UserMessage(err))
		} else {
			log.Info("action done")
		}
		c.state = AwaitingIndex
		return nil
	}
}

func (c *Controller) lookupAction(key string) (engine.ActionKind, bool) {
	for _, a := range c.Actions {
		if a.Key() == key {
			return a, true
		}
	}
	return 0, false
}

// Menu renders the action list for a selected result.
func Menu(actions []engine.ActionKind) string {
	var b strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&b, "[%s] %s\n", a.Key(), a.Label())
	}
	b.WriteString("[0] Go back\n")
	return b.String()
}
