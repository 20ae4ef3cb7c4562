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

// ThePirateBay scrapes TPB mirrors. Pages count from 0.
type ThePirateBay struct{}

var (
	tpbRows    = cascadia.MustCompile("table#searchResult tr")
	tpbDetName = cascadia.MustCompile("div.detName")
	tpbLink    = cascadia.MustCompile("a.detLink")
	tpbDesc    = cascadia.MustCompile("font.detDesc")
	tpbCateg   = cascadia.MustCompile("td.vertTh a")
	tpbCounts  = cascadia.MustCompile(`td[align="right"]`)
	tpbMagnet  = cascadia.MustCompile(`a[title="Download this torrent using magnet"]`)
	tpbComment = cascadia.MustCompile(`img[src*="icon_comment"]`)
	tpbVIP     = cascadia.MustCompile(`img[title="VIP"]`)
	tpbTrusted = cascadia.MustCompile(`img[title="Trusted"]`)

	tpbDescRe = regexp.MustCompile(`Uploaded\s+(.+?),\s*Size\s+(.+?),`)
)

func (ThePirateBay) Key() string  { return "tpb" }
func (ThePirateBay) Name() string { return "The Pirate Bay" }

func (ThePirateBay) Headers() []string {
	return []string{"CATEG", "NAME", "INDEX", "UPLOADER", "SIZE", "S", "L", "DATE", "C"}
}

func (ThePirateBay) Actions() []engine.ActionKind {
	return []engine.ActionKind{engine.ActionPrint, engine.ActionLoad, engine.ActionDetails}
}

// Probe checks the landing page title link, then that a search actually
// returns result markup. Some mirrors serve the front page but proxy
// nothing behind it.
func (ThePirateBay) Probe(ctx context.Context, f engine.Fetcher, proxy string) bool {
	base := trimBase(proxy)
	doc, _, err := f.Fetch(ctx, base)
	if err != nil || text(doc.Find("a").First()) != "The Pirate Bay" {
		return false
	}
	doc, _, err = f.Fetch(ctx, base+"/search/hello/0/99/0")
	return err == nil && doc.FindMatcher(tpbDetName).Length() > 0
}

func (ThePirateBay) PageURL(proxy string, b engine.Budget, page int) (string, error) {
	base := trimBase(proxy)
	switch b.Mode {
	case engine.ModeTopAll:
		return base + "/top/all", nil
	case engine.ModeTopRecent:
		return base + "/top/48hall", nil
	}
	return fmt.Sprintf("%s/search/%s/%d/99/%d", base, url.PathEscape(b.Title), page, b.Category), nil
}

// Listings skips the header row.
func (ThePirateBay) Listings(doc *goquery.Document) *goquery.Selection {
	return doc.FindMatcher(tpbRows).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find("th").Length() == 0 && !s.HasClass("header")
	})
}

func (ThePirateBay) ParseListing(s *goquery.Selection, proxy string) (engine.Listing, error) {
	var l engine.Listing

	magnet, err := engine.Required("magnet", s.FindMatcher(tpbMagnet).First().AttrOr("href", ""))
	if err != nil {
		return l, err
	}

	link := s.FindMatcher(tpbLink).First()
	title := strings.TrimPrefix(link.AttrOr("title", ""), "Details for ")
	name, err := engine.Required("name", engine.Optional(text(link), engine.Optional(clean(title), extractMagnetName(magnet))))
	if err != nil {
		return l, err
	}
	href, err := engine.Required("link", link.AttrOr("href", ""))
	if err != nil {
		return l, err
	}
	id, err := engine.Required("torrent id", tpbTorrentID(href))
	if err != nil {
		return l, err
	}

	desc := s.FindMatcher(tpbDesc).First()
	m := tpbDescRe.FindStringSubmatch(text(desc))
	if m == nil {
		return l, &engine.FieldError{Field: "size"}
	}
	date, size := m[1], m[2]
	uploader := engine.Optional(text(desc.Find("a, i").First()), "Anonymous")

	cats := s.FindMatcher(tpbCateg)
	if cats.Length() < 2 {
		return l, &engine.FieldError{Field: "category"}
	}
	categ := text(cats.Eq(0)) + " > " + text(cats.Eq(1))

	counts := s.FindMatcher(tpbCounts)
	if counts.Length() < 2 {
		return l, &engine.FieldError{Field: "seeds"}
	}
	seeds := engine.Optional(text(counts.Eq(0)), "0")
	leeches := engine.Optional(text(counts.Eq(1)), "0")

	// alt reads "This torrent has N comments."
	comments := engine.Optional(firstNumber(wordFromEnd(s.FindMatcher(tpbComment).AttrOr("alt", ""), 2)), "0")

	switch {
	case s.FindMatcher(tpbVIP).Length() > 0:
		l.Highlight = engine.HighlightVIP
	case s.FindMatcher(tpbTrusted).Length() > 0:
		l.Highlight = engine.HighlightTrusted
	}

	l.Fields = []string{categ, name, uploader, size, seeds, leeches, date, comments}
	l.Detail = engine.Detail{
		Name:     name,
		Link:     magnet,
		Upstream: trimBase(proxy) + "/torrent/" + id,
	}
	return l, nil
}

// tpbTorrentID reads <id> from a /torrent/<id>/<slug> link on any host.
func tpbTorrentID(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "torrent" {
			return parts[i+1]
		}
	}
	return ""
}

// DetailHTML keeps the description and the comment thread.
func (ThePirateBay) DetailHTML(doc *goquery.Document) (string, error) {
	var b strings.Builder
	for _, sel := range []string{"div#title", "div.nfo", "div#comments"} {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		h, err := goquery.OuterHtml(node)
		if err != nil {
			return "", err
		}
		b.WriteString(h)
	}
	if b.Len() == 0 {
		return doc.Find("body").Html()
	}
	return b.String(), nil
}
