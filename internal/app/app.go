// Package app runs one complete torrench session: search a site, print the
// result grid, and hand the results to the selection loop.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/litescript/torrench/internal/action"
	"github.com/litescript/torrench/internal/client"
	"github.com/litescript/torrench/internal/config"
	"github.com/litescript/torrench/internal/engine"
	"github.com/litescript/torrench/internal/fetch"
	"github.com/litescript/torrench/internal/scraper"
	"github.com/litescript/torrench/internal/selection"
	"github.com/litescript/torrench/internal/tui"
	"github.com/spf13/afero"
)

// Fetcher fetches result pages and downloads files.
type Fetcher interface {
	engine.Fetcher
	action.Downloader
}

// App holds what outlives a single session. The config may be swapped
// while the interactive shell runs; each search reads it once at start.
type App struct {
	mu  sync.RWMutex
	cfg config.Config

	Prompter selection.Prompter
	Out      io.Writer
	Log      *slog.Logger
	FS       afero.Fs

	// Copy puts printed magnet links on the clipboard.
	Copy bool

	NewFetcher  func(config.FetchConfig) (Fetcher, error)
	NewReporter func(ctx context.Context) tui.Reporter
	NewLoader   func(config.ClientConfig, string) action.Loader
}

// New returns an App with production collaborators.
func New(cfg config.Config, p selection.Prompter, out io.Writer, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{
		cfg:         cfg,
		Prompter:    p,
		Out:         out,
		Log:         log,
		FS:          afero.NewOsFs(),
		NewFetcher:  newFetcher,
		NewReporter: func(context.Context) tui.Reporter { return &tui.PlainReporter{Out: out} },
		NewLoader:   newLoader,
	}
}

func newFetcher(fc config.FetchConfig) (Fetcher, error) {
	return fetch.New(fetch.Options{
		Timeout:           fc.Timeout(),
		UserAgent:         fc.UserAgent,
		RequestsPerSecond: fc.RequestsPerSecond,
		SocksProxy:        fc.SocksProxy,
	})
}

func newLoader(cc config.ClientConfig, savePath string) action.Loader {
	l := client.New(client.Config{
		Name:     cc.Name,
		Host:     cc.Host,
		Port:     cc.Port,
		Username: cc.Username,
		Password: cc.Password,
		SavePath: savePath,
	})
	if l == nil {
		return nil
	}
	return l
}

// Config returns the config the next search will use.
func (a *App) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// SetConfig replaces the config. Searches already running keep theirs.
func (a *App) SetConfig(cfg config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

// Search runs a session against the site registered under key. It returns
// once the user leaves the selection loop. Errors are engine errors from
// the search itself; action failures are reported inside the loop.
func (a *App) Search(ctx context.Context, key string, b engine.Budget) error {
	site, ok := scraper.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown site %q", key)
	}
	cfg := a.Config()

	candidates := cfg.Proxies(key)
	if len(candidates) == 0 {
		a.Log.Warn("site has no proxies configured", "site", key)
	}

	f, err := a.NewFetcher(cfg.Fetch)
	if err != nil {
		return fmt.Errorf("http client: %w", err)
	}

	rep := a.NewReporter(ctx)
	sess, err := engine.Search(ctx, site, b, engine.Options{
		Candidates: candidates,
		Fetcher:    f,
		Reporter:   rep,
		Fetch:      engine.FetchOptions{Concurrency: cfg.Fetch.Concurrency},
		Logger:     a.Log,
	})
	rep.Stop()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, tui.Results(site.Headers(), sess.Rows))
	fmt.Fprintln(a.Out, tui.Summary(len(sess.Rows), sess.Pages, sess.Elapsed))

	ctrl := &selection.Controller{
		Index:    sess.Index,
		Actions:  site.Actions(),
		Prompter: a.Prompter,
		Dispatch: &action.Dispatcher{
			Site:        site,
			Proxy:       sess.Proxy,
			Fetcher:     f,
			Downloader:  f,
			Client:      a.NewLoader(cfg.Client, cfg.Downloads.Path),
			FS:          a.FS,
			DownloadDir: cfg.Downloads.Path,
			DetailsDir:  cfg.Details.Path,
			Copy:        a.Copy,
			Out:         a.Out,
			Log:         sess.Log,
		},
		Out: a.Out,
		Log: sess.Log,
	}
	return ctrl.Run(ctx)
}

// ListCategories prints the category codes of the site registered under
// key, read from the first reachable proxy.
func (a *App) ListCategories(ctx context.Context, key string) error {
	site, ok := scraper.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown site %q", key)
	}
	lister, ok := site.(engine.CategoryLister)
	if !ok {
		return fmt.Errorf("%s has no categories", site.Name())
	}
	cfg := a.Config()

	f, err := a.NewFetcher(cfg.Fetch)
	if err != nil {
		return fmt.Errorf("http client: %w", err)
	}

	rep := a.NewReporter(ctx)
	proxy, err := engine.Resolve(ctx, cfg.Proxies(key), func(ctx context.Context, c string) bool {
		return site.Probe(ctx, f, c)
	}, rep)
	rep.Stop()
	if err != nil {
		return err
	}

	cats, err := lister.Categories(ctx, f, proxy)
	if err != nil {
		return &engine.Error{Kind: engine.ErrParse, Site: site.Name(), Proxy: proxy, Err: err}
	}
	fmt.Fprintln(a.Out, tui.Categories(cats))
	return nil
}
