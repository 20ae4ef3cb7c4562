package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/litescript/torrench/internal/engine"
)

// LinuxTracker scrapes linuxtracker.org. Listings carry no magnet; the
// selected torrent is downloaded as a .torrent file via its detail page.
type LinuxTracker struct{}

// the results table is the fifth full-width "lista" table on the page
const linuxTrackerTable = 4

func (LinuxTracker) Key() string  { return "linuxtracker" }
func (LinuxTracker) Name() string { return "LinuxTracker" }

func (LinuxTracker) Headers() []string {
	return []string{"NAME", "INDEX", "SIZE", "SEEDS", "LEECHES", "COMPLETED", "ADDED"}
}

func (LinuxTracker) Actions() []engine.ActionKind {
	return []engine.ActionKind{engine.ActionDownload}
}

func (LinuxTracker) Probe(ctx context.Context, f engine.Fetcher, proxy string) bool {
	doc, _, err := f.Fetch(ctx, trimBase(proxy)+"/index.php?page=torrents")
	return err == nil && doc.Find(`select[name="category"]`).Length() > 0
}

// Categories reads the codes accepted by --category from the search form.
func (LinuxTracker) Categories(ctx context.Context, f engine.Fetcher, proxy string) ([]engine.Category, error) {
	doc, _, err := f.Fetch(ctx, trimBase(proxy)+"/index.php?page=torrents")
	if err != nil {
		return nil, err
	}
	var cats []engine.Category
	doc.Find(`select[name="category"] option`).Each(func(_ int, o *goquery.Selection) {
		code, err := strconv.Atoi(strings.TrimSpace(o.AttrOr("value", "")))
		if err != nil {
			return
		}
		cats = append(cats, engine.Category{Code: code, Name: text(o)})
	})
	if len(cats) == 0 {
		return nil, &engine.FieldError{Field: "category"}
	}
	return cats, nil
}

func (LinuxTracker) PageURL(proxy string, b engine.Budget, page int) (string, error) {
	if b.Mode.IsTop() {
		return "", engine.ErrTopUnsupported
	}
	return fmt.Sprintf("%s/index.php?page=torrents&search=%s&category=%d&active=1&pages=%d",
		trimBase(proxy), url.QueryEscape(b.Title), b.Category, page+1), nil
}

// Listings returns the top-level rows of the results table that hold a
// torrent. Each of those rows nests its own small table of stats.
func (LinuxTracker) Listings(doc *goquery.Document) *goquery.Selection {
	return doc.Find(`table.lista[width="100%"]`).Eq(linuxTrackerTable).
		ChildrenFiltered("tbody").ChildrenFiltered("tr").
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find("font a").Length() > 0
		})
}

func (LinuxTracker) ParseListing(s *goquery.Selection, proxy string) (engine.Listing, error) {
	var l engine.Listing

	name, err := engine.Required("name", text(s.Find("font a").First()))
	if err != nil {
		return l, err
	}

	// Added / Size / Seeds / Leechers / Completed
	stats := s.Find("tr")
	if stats.Length() < 5 {
		return l, &engine.FieldError{Field: "stats"}
	}
	value := func(i int) string { return text(stats.Eq(i).Find("td").Last()) }
	date := value(0)
	size, err := engine.Required("size", strings.ReplaceAll(ownText(stats.Eq(1).Find("td").Last()), " ", ""))
	if err != nil {
		return l, err
	}
	seeds := engine.Optional(value(2), "0")
	leeches := engine.Optional(value(3), "0")
	completed := engine.Optional(value(4), "0")

	href, err := engine.Required("link", s.Find(`td[align="right"]`).First().Find("a").Eq(1).AttrOr("href", ""))
	if err != nil {
		return l, err
	}
	page := absolute(proxy, href)

	l.Fields = []string{name, size, seeds, leeches, completed, date}
	l.Detail = engine.Detail{Name: name, Link: page, Upstream: page}
	return l, nil
}

// ResolveDownload follows the detail page to the actual .torrent link. The
// file name comes from the link's f parameter.
func (LinuxTracker) ResolveDownload(ctx context.Context, f engine.Fetcher, proxy string, d engine.Detail) (engine.DownloadTarget, error) {
	doc, _, err := f.Fetch(ctx, d.Upstream)
	if err != nil {
		return engine.DownloadTarget{}, err
	}
	href, err := engine.Required("download link", doc.Find(`td.blocklist[align="center"]`).Last().Find("a").AttrOr("href", ""))
	if err != nil {
		return engine.DownloadTarget{}, err
	}

	name := ""
	if u, err := url.Parse(href); err == nil {
		name = u.Query().Get("f")
	}
	return engine.DownloadTarget{
		URL:      absolute(proxy, href),
		FileName: fileName(engine.Optional(name, d.Name), ".torrent"),
	}, nil
}
