package engine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/litescript/torrench/internal/engine"
)

// fakeFetcher serves canned HTML keyed by URL and records every request.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	elapsed map[string]time.Duration
	fail    map[string]error
	calls   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:   map[string]string{},
		elapsed: map[string]time.Duration{},
		fail:    map[string]error{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, time.Duration, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	err := f.fail[url]
	elapsed := f.elapsed[url]
	f.mu.Unlock()

	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, errors.New("connection refused")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	return doc, elapsed, err
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// listSite is a minimal adapter over <ul class="results"><li>...</li></ul>.
type listSite struct {
	top bool
}

func (listSite) Key() string       { return "list" }
func (listSite) Name() string      { return "List" }
func (listSite) Headers() []string { return []string{"NAME", "INDEX", "C"} }

func (listSite) Probe(ctx context.Context, f engine.Fetcher, proxy string) bool {
	doc, _, err := f.Fetch(ctx, proxy+"/probe")
	return err == nil && doc.Find("li").Length() > 0
}

func (s listSite) PageURL(proxy string, b engine.Budget, page int) (string, error) {
	if b.Mode.IsTop() {
		if !s.top {
			return "", engine.ErrTopUnsupported
		}
		return proxy + "/top", nil
	}
	return fmt.Sprintf("%s/search/%s/%d", proxy, b.Title, page+1), nil
}

func (listSite) Listings(doc *goquery.Document) *goquery.Selection {
	return doc.Find("ul.results > li")
}

func (listSite) ParseListing(s *goquery.Selection, proxy string) (engine.Listing, error) {
	a := s.Find("a.name")
	name, err := engine.Required("name", strings.TrimSpace(a.Text()))
	if err != nil {
		return engine.Listing{}, err
	}
	href, _ := a.Attr("href")
	comments := engine.Optional(strings.TrimSpace(s.Find("span.c").Text()), "0")
	return engine.Listing{
		Fields: []string{name, comments},
		Detail: engine.Detail{
			Name:     name,
			Link:     "magnet:?xt=urn:btih:" + name,
			Upstream: proxy + href,
		},
	}, nil
}

func (listSite) Actions() []engine.ActionKind {
	return []engine.ActionKind{engine.ActionPrint, engine.ActionLoad}
}

func listPage(names ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="results">`)
	for _, n := range names {
		fmt.Fprintf(&b, `<li><a class="name" href="/t/%s">%s</a><span class="c">2</span></li>`, n, n)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

func mustDoc(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}

// recordingReporter keeps probe and page events in order.
type recordingReporter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingReporter) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recordingReporter) ProbeStarted(c string) { r.add("try " + c) }
func (r *recordingReporter) ProbeFinished(c string, ok bool) {
	r.add(fmt.Sprintf("done %s %v", c, ok))
}
func (r *recordingReporter) PageStarted(page, total int) { r.add(fmt.Sprintf("page %d/%d", page, total)) }
func (r *recordingReporter) PageFetched(page int, d time.Duration) {
	r.add(fmt.Sprintf("fetched %d", page))
}
