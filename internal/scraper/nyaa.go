package scraper

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/litescript/torrench/internal/engine"
)

// Nyaa scrapes nyaa.si style mirrors. Results are sorted by seeders.
type Nyaa struct{}

var (
	nyaaRows     = cascadia.MustCompile("table.torrent-list > tbody > tr")
	nyaaName     = cascadia.MustCompile(`td[colspan="2"]`)
	nyaaCells    = cascadia.MustCompile("td.text-center")
	nyaaMagnet   = cascadia.MustCompile(`a[href^="magnet:"]`)
	nyaaTorrent  = cascadia.MustCompile(`a[href$=".torrent"]`)
	nyaaComments = cascadia.MustCompile("a.comments")
)

func (Nyaa) Key() string  { return "nyaa" }
func (Nyaa) Name() string { return "Nyaa" }

func (Nyaa) Headers() []string {
	return []string{"CATEG", "NAME", "INDEX", "SIZE", "DATE", "S", "L", "C"}
}

func (Nyaa) Actions() []engine.ActionKind {
	return []engine.ActionKind{engine.ActionPrint, engine.ActionLoad, engine.ActionDownload}
}

func (Nyaa) Probe(ctx context.Context, f engine.Fetcher, proxy string) bool {
	doc, _, err := f.Fetch(ctx, trimBase(proxy)+"/?f=0&c=0_0&q=hello&s=seeders&o=desc")
	return err == nil && doc.FindMatcher(nyaaName).Length() > 0
}

func (Nyaa) PageURL(proxy string, b engine.Budget, page int) (string, error) {
	if b.Mode.IsTop() {
		return "", engine.ErrTopUnsupported
	}
	return fmt.Sprintf("%s/?f=0&c=0_0&q=%s&s=seeders&o=desc&p=%d", trimBase(proxy), url.QueryEscape(b.Title), page+1), nil
}

func (Nyaa) Listings(doc *goquery.Document) *goquery.Selection {
	return doc.FindMatcher(nyaaRows)
}

func (Nyaa) ParseListing(s *goquery.Selection, proxy string) (engine.Listing, error) {
	var l engine.Listing

	cell := s.FindMatcher(nyaaName).First()
	a := cell.Find("a").Not(".comments").Last()
	name, err := engine.Required("name", engine.Optional(a.AttrOr("title", ""), text(a)))
	if err != nil {
		return l, err
	}
	href, err := engine.Required("link", a.AttrOr("href", ""))
	if err != nil {
		return l, err
	}
	comments := engine.Optional(text(cell.FindMatcher(nyaaComments)), "0")
	categ := engine.Optional(s.Find("td").First().Find("a").AttrOr("title", ""), "-")

	cells := s.FindMatcher(nyaaCells)
	if cells.Length() < 5 {
		return l, &engine.FieldError{Field: "size"}
	}
	size, err := engine.Required("size", text(cells.Eq(1)))
	if err != nil {
		return l, err
	}
	date := text(cells.Eq(2))
	seeds := engine.Optional(text(cells.Eq(3)), "0")
	leeches := engine.Optional(text(cells.Eq(4)), "0")

	magnet, err := engine.Required("magnet", s.FindMatcher(nyaaMagnet).First().AttrOr("href", ""))
	if err != nil {
		return l, err
	}

	if s.HasClass("success") {
		l.Highlight = engine.HighlightTrusted
	}

	l.Fields = []string{categ, name, size, date, seeds, leeches, comments}
	l.Detail = engine.Detail{
		Name:     name,
		Link:     magnet,
		Upstream: absolute(proxy, href),
		Download: absolute(proxy, s.FindMatcher(nyaaTorrent).First().AttrOr("href", "")),
	}
	return l, nil
}

// ResolveDownload uses the .torrent link from the listing itself.
func (Nyaa) ResolveDownload(_ context.Context, _ engine.Fetcher, _ string, d engine.Detail) (engine.DownloadTarget, error) {
	if d.Download == "" {
		return engine.DownloadTarget{}, &engine.FieldError{Field: "download link"}
	}
	return engine.DownloadTarget{URL: d.Download, FileName: fileName(d.Name, ".torrent")}, nil
}
