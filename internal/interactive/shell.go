// Package interactive implements the torrench > shell started with -i.
// Each command runs a complete search session and returns to the prompt.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/litescript/torrench/internal/engine"
	"github.com/litescript/torrench/internal/selection"
	"github.com/litescript/torrench/internal/tui"
)

// Prompt is printed before every command.
const Prompt = "torrench > "

// Searcher runs one session against a site.
type Searcher interface {
	Search(ctx context.Context, site string, b engine.Budget) error
}

// Site is one entry of the help text.
type Site struct {
	Key  string
	Name string
}

// Shell reads commands until quit, end of input, or cancellation.
type Shell struct {
	Prompter selection.Prompter
	Searcher Searcher
	Sites    []Site
	Pages    int
	Out      io.Writer
	Log      *slog.Logger
}

// CommandKind classifies a shell line.
type CommandKind int

const (
	CommandInvalid CommandKind = iota
	CommandHelp
	CommandQuit
	CommandSearch
	CommandEmpty
)

// Command is a parsed shell line.
type Command struct {
	Kind  CommandKind
	Site  string
	Query string
}

// Parse splits a line into a command. Searches look like "!<site> <query>";
// the query keeps its inner spacing.
func Parse(line string, sites []Site) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Kind: CommandEmpty}
	}
	head, rest, _ := strings.Cut(line, " ")
	switch head {
	case "!h", "help":
		return Command{Kind: CommandHelp}
	case "!q", "quit":
		return Command{Kind: CommandQuit}
	}
	if key, ok := strings.CutPrefix(head, "!"); ok {
		for _, s := range sites {
			if s.Key == key {
				return Command{Kind: CommandSearch, Site: key, Query: strings.TrimSpace(rest)}
			}
		}
	}
	return Command{Kind: CommandInvalid}
}

// Help lists the shell commands and the available sites.
func Help(sites []Site) string {
	var b strings.Builder
	b.WriteString("\nAvailable commands:\n")
	b.WriteString("  !h or help  - Help text (this)\n")
	b.WriteString("  !q or quit  - Quit interactive mode\n")
	b.WriteString("\nAvailable modules:\n")
	for _, s := range sites {
		fmt.Fprintf(&b, "  !%s <string> - Search %s\n", s.Key, s.Name)
	}
	return b.String()
}

// Run loops over commands. Search failures are reported and the shell
// keeps going.
func (s *Shell) Run(ctx context.Context) error {
	log := s.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	pages := s.Pages
	if pages <= 0 {
		pages = 1
	}

	for {
		line, err := s.Prompter.Prompt(ctx, "\n"+tui.GetStyles().Prompt.Render(Prompt))
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				fmt.Fprintln(s.Out, "Terminated.")
				return nil
			}
			return err
		}
		log.Debug("shell input", "line", line)

		cmd := Parse(line, s.Sites)
		switch cmd.Kind {
		case CommandEmpty:
		case CommandHelp:
			fmt.Fprint(s.Out, Help(s.Sites))
		case CommandQuit:
			fmt.Fprintln(s.Out, "Bye!")
			return nil
		case CommandInvalid:
			fmt.Fprintln(s.Out, "Invalid command! Try `!h` or `help` for help.")
		case CommandSearch:
			b, err := engine.NewBudget(cmd.Query, pages, engine.ModeSearch)
			if err != nil {
				log.Debug("bad input", "site", cmd.Site, "err", err)
				fmt.Fprintf(s.Out, "%s\nUsage: !%s <string>\n", badInput(err), cmd.Site)
				continue
			}
			if err := s.Searcher.Search(ctx, cmd.Site, b); err != nil {
				if ctx.Err() != nil {
					fmt.Fprintln(s.Out, "Terminated.")
					return nil
				}
				log.Warn("search failed", "site", cmd.Site, "query", cmd.Query, "err", err)
				fmt.Fprintln(s.Out, tui.Failure(engine.UserMessage(err)))
			}
		}
	}
}

// badInput turns a budget validation error into the text shown to the user.
func badInput(err error) string {
	msg := strings.TrimPrefix(err.Error(), engine.ErrBadSelection.Error()+": ")
	return "Bad input! " + strings.ToUpper(msg[:1]) + msg[1:] + "."
}
