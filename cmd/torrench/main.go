// Torrench searches torrent sites from the terminal. It probes the
// configured mirrors of the chosen site, prints the results as a grid,
// and lets the user print, load, save, or download a selected torrent.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/litescript/torrench/internal/action"
	"github.com/litescript/torrench/internal/app"
	"github.com/litescript/torrench/internal/config"
	"github.com/litescript/torrench/internal/engine"
	"github.com/litescript/torrench/internal/interactive"
	"github.com/litescript/torrench/internal/logging"
	"github.com/litescript/torrench/internal/scraper"
	"github.com/litescript/torrench/internal/selection"
	"github.com/litescript/torrench/internal/tui"
	"github.com/litescript/torrench/internal/version"
	"github.com/spf13/afero"
)

// exitFatal matches the status the tool has always used for a failed run.
const exitFatal = 2

type options struct {
	tpb, kat, sky, nyaa bool

	pages       int
	top, recent bool
	copy        bool
	interactive bool
	clear       bool
	category    int
	categories  bool
	verbose     bool
	version     bool
	configPath  string

	query string
}

// site picks the adapter. The first selector flag wins in tpb, kat, sky,
// nyaa order; with none set the default site is searched.
func (o options) site() string {
	switch {
	case o.tpb:
		return "tpb"
	case o.kat:
		return "kat"
	case o.sky:
		return "sky"
	case o.nyaa:
		return "nyaa"
	}
	return scraper.DefaultSite
}

func (o options) mode() engine.Mode {
	switch {
	case o.top && o.recent:
		return engine.ModeTopRecent
	case o.top:
		return engine.ModeTopAll
	}
	return engine.ModeSearch
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("torrench", flag.ContinueOnError)
	fs.SetOutput(stderr)

	for _, name := range []string{"t", "thepiratebay"} {
		fs.BoolVar(&o.tpb, name, false, "search The Pirate Bay")
	}
	for _, name := range []string{"k", "kickasstorrent"} {
		fs.BoolVar(&o.kat, name, false, "search KickassTorrents")
	}
	for _, name := range []string{"s", "skytorrents"} {
		fs.BoolVar(&o.sky, name, false, "search SkyTorrents")
	}
	for _, name := range []string{"n", "nyaa"} {
		fs.BoolVar(&o.nyaa, name, false, "search Nyaa")
	}
	for _, name := range []string{"p", "page-limit"} {
		fs.IntVar(&o.pages, name, 1, "number of result pages to fetch (1-50)")
	}
	for _, name := range []string{"i", "interactive"} {
		fs.BoolVar(&o.interactive, name, false, "start the interactive shell")
	}
	for _, name := range []string{"c", "clear-html"} {
		fs.BoolVar(&o.clear, name, false, "remove saved torrent details and exit")
	}
	fs.BoolVar(&o.top, "top", false, "list top torrents instead of searching [tpb/sky]")
	fs.BoolVar(&o.recent, "recent", false, "with --top, list the last 48 hours [tpb]")
	fs.BoolVar(&o.copy, "copy", false, "copy printed magnet links to the clipboard")
	fs.IntVar(&o.category, "category", 0, "category filter [linuxtracker]")
	fs.BoolVar(&o.categories, "categories", false, "list the codes --category accepts and exit [linuxtracker]")
	fs.BoolVar(&o.verbose, "v", false, "debug logging, mirrored to stderr")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	fs.StringVar(&o.configPath, "config", "", "config file (default "+config.ConfigPath()+")")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: torrench [flags] [query]")
		fs.PrintDefaults()
	}

	// flags may follow the query words
	var words []string
	for {
		if err := fs.Parse(args); err != nil {
			return o, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		words = append(words, args[0])
		args = args[1:]
	}
	o.query = strings.Join(words, " ")
	if o.recent {
		o.top = true
	}
	return o, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return exitFatal
	}

	if opts.version {
		fmt.Printf("torrench v%s\n", version.Version)
		return 0
	}

	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}

	if err := config.EnsureDownloadDir(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create download dir: %v\n", err)
	}

	log, closer, err := logging.NewLogger(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Verbose:    opts.verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()
	log.Debug("starting torrench", "version", version.Version, "config", cfgPath, "site", opts.site())

	if opts.clear {
		return clearDetails(cfg.Details.Path, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, selection.NewLinePrompter(os.Stdin, os.Stdout), os.Stdout, log)
	a.Copy = opts.copy
	a.NewReporter = func(ctx context.Context) tui.Reporter { return tui.NewReporter(ctx, os.Stdout) }

	if opts.categories {
		if err := a.ListCategories(ctx, opts.site()); err != nil {
			fmt.Fprintln(os.Stderr, tui.Failure(engine.UserMessage(err)))
			return exitFatal
		}
		return 0
	}

	if opts.interactive {
		if err := engine.ValidatePages(opts.pages); err != nil {
			return badInput(err, log)
		}
		return shell(ctx, a, cfgPath, opts, log)
	}

	b, err := engine.NewBudget(opts.query, opts.pages, opts.mode())
	if err != nil {
		return badInput(err, log)
	}
	b.Category = opts.category

	if err := a.Search(ctx, opts.site(), b); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nTerminated.")
			return 0
		}
		fmt.Fprintln(os.Stderr, tui.Failure(engine.UserMessage(err)))
		return exitFatal
	}
	return 0
}

// loadConfig reads the config file. On first run the defaults, plus any
// legacy torrench.ini settings, are written out so there is a file to edit.
func loadConfig(path string) (config.Config, string, error) {
	var (
		cfg config.Config
		err error
	)
	if path == "" {
		path = config.ConfigPath()
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return cfg, path, err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if err := config.Save(path, cfg); err != nil {
			return cfg, path, fmt.Errorf("write default config: %w", err)
		}
	}
	return cfg, path, nil
}

func badInput(err error, log *slog.Logger) int {
	log.Debug("bad input", "err", err)
	fmt.Fprintf(os.Stderr, "\n%s\nUse --help for more\n", strings.TrimPrefix(err.Error(), engine.ErrBadSelection.Error()+": "))
	return exitFatal
}

func shell(ctx context.Context, a *app.App, cfgPath string, opts options, log *slog.Logger) int {
	w, err := config.NewWatcher(cfgPath, log, a.SetConfig)
	if err != nil {
		log.Debug("config watch disabled", "err", err)
	} else {
		defer w.Stop()
	}

	var sites []interactive.Site
	for _, key := range scraper.Keys() {
		s, _ := scraper.Lookup(key)
		sites = append(sites, interactive.Site{Key: key, Name: s.Name()})
	}

	sh := &interactive.Shell{
		Prompter: a.Prompter,
		Searcher: a,
		Sites:    sites,
		Pages:    opts.pages,
		Out:      os.Stdout,
		Log:      log,
	}
	if err := sh.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func clearDetails(dir string, log *slog.Logger) int {
	fs := afero.NewOsFs()
	if ok, _ := afero.DirExists(fs, dir); !ok {
		fmt.Println("Directory not initialised. Exiting!")
		return exitFatal
	}
	n, err := action.ClearArtifacts(fs, dir)
	if err != nil {
		log.Error("clear details failed", "dir", dir, "err", err)
		fmt.Fprintln(os.Stderr, tui.Failure("Failed to remove files: "+err.Error()))
		return 1
	}
	if n == 0 {
		fmt.Println("Directory empty. Nothing to remove")
		return 0
	}
	log.Debug("details cleared", "dir", dir, "count", n)
	fmt.Printf("Removed %d file(s).\n", n)
	return 0
}
