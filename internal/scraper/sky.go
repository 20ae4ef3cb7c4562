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

// SkyTorrents scrapes SkyTorrents mirrors. Pages count from 1.
type SkyTorrents struct{}

func (SkyTorrents) Key() string  { return "sky" }
func (SkyTorrents) Name() string { return "SkyTorrents" }

func (SkyTorrents) Headers() []string {
	return []string{"NAME [+UPVOTES/-DOWNVOTES]", "INDEX", "SIZE", "FILES", "UPLOADED", "SEEDS", "LEECHES"}
}

func (SkyTorrents) Actions() []engine.ActionKind {
	return []engine.ActionKind{engine.ActionPrint, engine.ActionLoad, engine.ActionFiles}
}

func (SkyTorrents) Probe(ctx context.Context, f engine.Fetcher, proxy string) bool {
	doc, _, err := f.Fetch(ctx, trimBase(proxy)+"/search/all/ed/1/?l=en-us&q=hello")
	return err == nil && doc.Find("tr").Length() > 1
}

func (SkyTorrents) PageURL(proxy string, b engine.Budget, page int) (string, error) {
	base := trimBase(proxy)
	switch b.Mode {
	case engine.ModeTopAll:
		return fmt.Sprintf("%s/top1000/all/ed/%d/?l=en-us", base, page+1), nil
	case engine.ModeTopRecent:
		return "", engine.ErrTopUnsupported
	}
	return fmt.Sprintf("%s/search/all/ed/%d/?l=en-us&q=%s", base, page+1, url.QueryEscape(b.Title)), nil
}

// Listings skips the header row.
func (SkyTorrents) Listings(doc *goquery.Document) *goquery.Selection {
	return doc.Find("tr").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ChildrenFiltered("td").Length() > 0
	})
}

func (SkyTorrents) ParseListing(s *goquery.Selection, proxy string) (engine.Listing, error) {
	var l engine.Listing

	tds := s.ChildrenFiltered("td")
	if tds.Length() < 6 {
		return l, &engine.FieldError{Field: "size"}
	}
	first := tds.Eq(0)
	links := first.Find("a")

	magnet, err := engine.Required("magnet", first.Find(`a[href^="magnet:"]`).First().AttrOr("href", ""))
	if err != nil {
		return l, err
	}
	name, err := engine.Required("name", engine.Optional(text(links.Eq(0)), extractMagnetName(magnet)))
	if err != nil {
		return l, err
	}
	href, err := engine.Required("link", links.Eq(0).AttrOr("href", ""))
	if err != nil {
		return l, err
	}

	// votes trail the links as "&nbsp;<up>&nbsp;<down>"
	up, down := "0", "0"
	if parts := strings.Split(first.Text(), "\u00a0"); len(parts) > 2 {
		up = engine.Optional(firstNumber(parts[1]), "0")
		down = engine.Optional(firstNumber(parts[2]), "0")
	}

	size, err := engine.Required("size", text(tds.Eq(1)))
	if err != nil {
		return l, err
	}
	files := engine.Optional(text(tds.Eq(2)), "0")
	uploaded := text(tds.Eq(3))
	seeds := engine.Optional(text(tds.Eq(4)), "0")
	leeches := engine.Optional(text(tds.Eq(5)), "0")

	n, _ := strconv.Atoi(files)
	l.Fields = []string{fmt.Sprintf("%s [+%s/-%s]", name, up, down), size, files, uploaded, seeds, leeches}
	l.Detail = engine.Detail{
		Name:     name,
		Link:     magnet,
		Upstream: absolute(proxy, href),
		Files:    n,
	}
	return l, nil
}

// ListFiles reads the file table of a detail page. The first row is the
// header; the listing's own file count bounds how many rows are taken.
func (SkyTorrents) ListFiles(doc *goquery.Document, d engine.Detail) ([]engine.FileInfo, error) {
	var files []engine.FileInfo
	doc.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			return true
		}
		tds := tr.ChildrenFiltered("td")
		if tds.Length() < 2 {
			return true
		}
		files = append(files, engine.FileInfo{Name: text(tds.Eq(0)), Size: text(tds.Eq(1))})
		return d.Files <= 0 || len(files) < d.Files
	})
	if len(files) == 0 {
		return nil, &engine.FieldError{Field: "files"}
	}
	return files, nil
}
