package engine

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sourcegraph/conc/pool"
)

// PageRequest is one planned fetch. Page counts from 0 in request order.
type PageRequest struct {
	Page int
	URL  string
}

// Page is a fetched result page.
type Page struct {
	Page    int
	URL     string
	Doc     *goquery.Document
	Elapsed time.Duration
}

// Plan builds the ordered page requests for a budget.
func Plan(site Site, proxy string, b Budget) ([]PageRequest, error) {
	n := b.PageCount()
	reqs := make([]PageRequest, 0, n)
	for page := 0; page < n; page++ {
		u, err := site.PageURL(proxy, b, page)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, PageRequest{Page: page, URL: u})
	}
	return reqs, nil
}

// FetchOptions tunes FetchPages.
type FetchOptions struct {
	// Concurrency above 1 fetches pages in parallel. Results are still
	// returned in page order.
	Concurrency int
}

// FetchPages fetches every request and returns the pages in request order
// together with the summed fetch time. A failure on any page fails the
// whole operation; no partial result is returned.
func FetchPages(ctx context.Context, f Fetcher, reqs []PageRequest, opts FetchOptions, r Reporter) ([]Page, time.Duration, error) {
	if r == nil {
		r = NopReporter{}
	}
	if opts.Concurrency > 1 && len(reqs) > 1 {
		return fetchParallel(ctx, f, reqs, opts.Concurrency, r)
	}

	pages := make([]Page, 0, len(reqs))
	var total time.Duration
	for _, req := range reqs {
		r.PageStarted(req.Page+1, len(reqs))
		p, err := fetchPage(ctx, f, req)
		if err != nil {
			return nil, 0, err
		}
		r.PageFetched(req.Page+1, p.Elapsed)
		total += p.Elapsed
		pages = append(pages, p)
	}
	return pages, total, nil
}

func fetchParallel(ctx context.Context, f Fetcher, reqs []PageRequest, workers int, r Reporter) ([]Page, time.Duration, error) {
	pages := make([]Page, len(reqs))
	p := pool.New().
		WithMaxGoroutines(workers).
		WithErrors().
		WithFirstError().
		WithContext(ctx).
		WithCancelOnError()

	for i, req := range reqs {
		p.Go(func(ctx context.Context) error {
			r.PageStarted(req.Page+1, len(reqs))
			page, err := fetchPage(ctx, f, req)
			if err != nil {
				return err
			}
			r.PageFetched(req.Page+1, page.Elapsed)
			pages[i] = page
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, 0, err
	}

	var total time.Duration
	for _, page := range pages {
		total += page.Elapsed
	}
	return pages, total, nil
}

func fetchPage(ctx context.Context, f Fetcher, req PageRequest) (Page, error) {
	doc, elapsed, err := f.Fetch(ctx, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		return Page{}, &Error{Kind: ErrFetch, URL: req.URL, Page: req.Page + 1, Err: err}
	}
	return Page{Page: req.Page, URL: req.URL, Doc: doc, Elapsed: elapsed}, nil
}
