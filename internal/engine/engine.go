// Package engine implements the search-fetch-parse pipeline shared by every
// site: mirror resolution, paginated fetching, and normalization of listing
// markup into rows with a stable 1-based index. Site-specific rules live in
// the scraper package and plug in through the Site interface.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// MaxPages is the largest page budget accepted for one search.
const MaxPages = 50

// Mode selects between a title search and a site's own top listing.
type Mode int

const (
	ModeSearch Mode = iota
	ModeTopAll
	ModeTopRecent
)

func (m Mode) String() string {
	switch m {
	case ModeTopAll:
		return "top-all"
	case ModeTopRecent:
		return "top-recent"
	default:
		return "search"
	}
}

// IsTop reports whether m is one of the top listings.
func (m Mode) IsTop() bool {
	return m == ModeTopAll || m == ModeTopRecent
}

// Budget describes what to fetch for one session.
type Budget struct {
	Title    string
	Pages    int
	Mode     Mode
	Category int // site category filter, 0 = all
}

// NewBudget validates and returns a Budget.
func NewBudget(title string, pages int, mode Mode) (Budget, error) {
	title = strings.TrimSpace(strings.ReplaceAll(title, "'", ""))
	if title == "" && !mode.IsTop() {
		return Budget{}, fmt.Errorf("%w: input string expected", ErrBadSelection)
	}
	if err := ValidatePages(pages); err != nil {
		return Budget{}, err
	}
	return Budget{Title: title, Pages: pages, Mode: mode}, nil
}

// ValidatePages checks a page limit against 1..MaxPages.
func ValidatePages(pages int) error {
	if pages <= 0 || pages > MaxPages {
		return fmt.Errorf("%w: page limit must be in 1..%d, got %d", ErrBadSelection, MaxPages, pages)
	}
	return nil
}

// PageCount is the number of result pages to request. Top listings are a
// single page.
func (b Budget) PageCount() int {
	if b.Mode.IsTop() {
		return 1
	}
	return b.Pages
}

// Row is one rendered result line. Fields follow the site's Headers order,
// excluding the index column.
type Row struct {
	Index     int
	Fields    []string
	Highlight Highlight
}

// Highlight marks uploader reputation where a site exposes it.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightTrusted
	HighlightVIP
)

// Detail is what an action needs to know about a selected result.
type Detail struct {
	Name     string
	Link     string // magnet URI, or the download page for sites without magnets
	Upstream string // page on the active mirror
	Download string // direct .torrent URL, when listed
	Files    int    // file count, when listed
}

// Listing is the parsed form of one listing node.
type Listing struct {
	Fields    []string
	Highlight Highlight
	Detail    Detail
}

// ActionKind enumerates what can be done with a selected result.
type ActionKind int

const (
	ActionPrint ActionKind = iota
	ActionLoad
	ActionDetails
	ActionFiles
	ActionDownload
)

// Key is the menu letter for the action.
func (a ActionKind) Key() string {
	switch a {
	case ActionPrint:
		return "p"
	case ActionLoad:
		return "l"
	case ActionDetails:
		return "g"
	case ActionFiles:
		return "f"
	case ActionDownload:
		return "d"
	}
	return ""
}

// Label is the menu text for the action.
func (a ActionKind) Label() string {
	switch a {
	case ActionPrint:
		return "Print magnetic link"
	case ActionLoad:
		return "Load magnetic link to client"
	case ActionDetails:
		return "Get torrent details"
	case ActionFiles:
		return "Show torrent files"
	case ActionDownload:
		return "Download torrent file"
	}
	return ""
}

// Fetcher retrieves and parses a page. The returned duration is the time
// spent on the request and is reported to the user.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, time.Duration, error)
}

// Site is the capability set a torrent site adapter provides.
type Site interface {
	// Key is the short identifier used in config and on the command line.
	Key() string
	// Name is the display name.
	Name() string
	// Headers lists the table columns, including "INDEX".
	Headers() []string
	// Probe reports whether a candidate mirror serves the site.
	Probe(ctx context.Context, f Fetcher, proxy string) bool
	// PageURL builds the URL of one result page. page counts from 0; the
	// adapter applies the site's own offset convention.
	PageURL(proxy string, b Budget, page int) (string, error)
	// Listings locates the listing nodes of a result page.
	Listings(doc *goquery.Document) *goquery.Selection
	// ParseListing extracts one listing. Missing required fields return an
	// error; optional fields fall back to defaults.
	ParseListing(s *goquery.Selection, proxy string) (Listing, error)
	// Actions is the menu offered for a selected result.
	Actions() []ActionKind
}

// Reporter observes pipeline progress.
type Reporter interface {
	ProbeStarted(candidate string)
	ProbeFinished(candidate string, ok bool)
	PageStarted(page, total int)
	PageFetched(page int, elapsed time.Duration)
}

// NopReporter discards progress.
type NopReporter struct{}

func (NopReporter) ProbeStarted(string)            {}
func (NopReporter) ProbeFinished(string, bool)     {}
func (NopReporter) PageStarted(int, int)           {}
func (NopReporter) PageFetched(int, time.Duration) {}
