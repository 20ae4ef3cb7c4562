package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/litescript/torrench/internal/engine"
)

// Kickass scrapes KickassTorrents mirrors. Pages count from 1 and the site
// has no top listing.
type Kickass struct{}

var (
	katName     = cascadia.MustCompile("a.cellMainLink")
	katInfo     = cascadia.MustCompile("span.lightgrey")
	katComments = cascadia.MustCompile("a.icommentjs")
	katCells    = cascadia.MustCompile("td.center")
	katMagnet   = cascadia.MustCompile(`a[title="Torrent magnet link"]`)
	katVerified = cascadia.MustCompile(`[title="Verified Torrent"]`)

	// "Posted by <uploader> in <category>"
	katPostedRe = regexp.MustCompile(`by\s+(\S+)\s+in\s+(.+)$`)
)

func (Kickass) Key() string  { return "kat" }
func (Kickass) Name() string { return "KickassTorrents" }

func (Kickass) Headers() []string {
	return []string{"CATEG", "NAME", "INDEX", "UPLOADER", "SIZE", "DATE", "S", "L", "C"}
}

func (Kickass) Actions() []engine.ActionKind {
	return []engine.ActionKind{engine.ActionPrint, engine.ActionLoad}
}

func (Kickass) Probe(ctx context.Context, f engine.Fetcher, proxy string) bool {
	base := trimBase(proxy)
	doc, _, err := f.Fetch(ctx, base)
	if err != nil {
		return false
	}
	href := doc.Find("a").First().AttrOr("href", "")
	return href == base+"/full/" || href == "/full/"
}

func (Kickass) PageURL(proxy string, b engine.Budget, page int) (string, error) {
	if b.Mode.IsTop() {
		return "", engine.ErrTopUnsupported
	}
	return fmt.Sprintf("%s/usearch/%s/%d/", trimBase(proxy), url.PathEscape(b.Title), page+1), nil
}

func (Kickass) Listings(doc *goquery.Document) *goquery.Selection {
	return doc.Find("table.data").First().Find("tr.odd, tr.even")
}

func (Kickass) ParseListing(s *goquery.Selection, proxy string) (engine.Listing, error) {
	var l engine.Listing

	a := s.FindMatcher(katName).First()
	raw := a.Text()
	if i := strings.Index(raw, "[["); i != -1 {
		raw = raw[:i]
	}
	name, err := engine.Required("name", clean(raw))
	if err != nil {
		return l, err
	}
	href, err := engine.Required("link", a.AttrOr("href", ""))
	if err != nil {
		return l, err
	}

	uploader, categ := "-", "-"
	if m := katPostedRe.FindStringSubmatch(text(s.FindMatcher(katInfo).First())); m != nil {
		uploader, categ = m[1], m[2]
	}

	cells := s.FindMatcher(katCells)
	if cells.Length() < 4 {
		return l, &engine.FieldError{Field: "size"}
	}
	size, err := engine.Required("size", text(cells.Eq(0)))
	if err != nil {
		return l, err
	}
	date := text(cells.Eq(1))
	seeds := engine.Optional(text(cells.Eq(2)), "0")
	leeches := engine.Optional(text(cells.Eq(3)), "0")
	comments := engine.Optional(text(s.FindMatcher(katComments).First()), "0")

	magnet, err := engine.Required("magnet", s.FindMatcher(katMagnet).First().AttrOr("href", ""))
	if err != nil {
		return l, err
	}
	if s.FindMatcher(katVerified).Length() > 0 {
		l.Highlight = engine.HighlightTrusted
	}

	l.Fields = []string{categ, name, uploader, size, date, seeds, leeches, comments}
	l.Detail = engine.Detail{
		Name:     name,
		Link:     magnet,
		Upstream: absolute(proxy, href),
	}
	return l, nil
}
