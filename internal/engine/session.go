package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Session is the state of one search, created per invocation and passed
// along the pipeline. Proxy is set once by Search and never changed.
type Session struct {
	ID      string
	Site    Site
	Budget  Budget
	Proxy   string
	Rows    []Row
	Index   *IndexMap
	Pages   int
	Elapsed time.Duration
	Log     *slog.Logger
}

// Options wires the collaborators of a search.
type Options struct {
	Candidates []string
	Fetcher    Fetcher
	Reporter   Reporter
	Fetch      FetchOptions
	Logger     *slog.Logger
}

// Search resolves a mirror, fetches the result pages, and parses them.
func Search(ctx context.Context, site Site, b Budget, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		ID:     uuid.NewString(),
		Site:   site,
		Budget: b,
	}
	s.Log = log.With("session", s.ID, "site", site.Key())
	s.Log.Debug("search started",
		"title", b.Title,
		"pages", b.PageCount(),
		"mode", b.Mode.String(),
		"candidates", len(opts.Candidates),
	)

	proxy, err := Resolve(ctx, opts.Candidates, func(ctx context.Context, c string) bool {
		ok := site.Probe(ctx, opts.Fetcher, c)
		s.Log.Debug("probe", "candidate", c, "ok", ok)
		return ok
	}, opts.Reporter)
	if err != nil {
		return nil, s.fail("resolve", err)
	}
	s.Proxy = proxy
	s.Log = s.Log.With("proxy", proxy)

	reqs, err := Plan(site, proxy, b)
	if err != nil {
		return nil, s.fail("plan", err)
	}

	pages, elapsed, err := FetchPages(ctx, opts.Fetcher, reqs, opts.Fetch, opts.Reporter)
	if err != nil {
		return nil, s.fail("fetch", err)
	}
	s.Pages = len(pages)
	s.Elapsed = elapsed
	s.Log.Debug("pages fetched", "count", len(pages), "elapsed", elapsed)

	res, err := Parse(pages, site, proxy)
	if err != nil {
		return nil, s.fail("parse", err)
	}
	s.Rows = res.Rows
	s.Index = res.Index
	s.Log.Debug("results parsed", "rows", len(res.Rows))
	return s, nil
}

// fail stamps site and proxy on engine errors and logs the failure.
func (s *Session) fail(stage string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Site == "" {
			e.Site = s.Site.Key()
		}
		if e.Proxy == "" {
			e.Proxy = s.Proxy
		}
	}
	if errors.Is(err, context.Canceled) {
		s.Log.Debug("search interrupted", "stage", stage)
		return err
	}
	s.Log.Error("search failed", "stage", stage, "err", err)
	return err
}
