package engine

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// FileInfo is one file inside a torrent.
type FileInfo struct {
	Name string
	Size string
}

// DownloadTarget is a resolved .torrent file location.
type DownloadTarget struct {
	URL      string
	FileName string
}

// FileLister is implemented by sites whose detail page lists torrent files.
type FileLister interface {
	ListFiles(doc *goquery.Document, d Detail) ([]FileInfo, error)
}

// DetailExtractor is implemented by sites that can cut the interesting part
// (description, comments) out of a detail page. Sites without it get the
// whole page body.
type DetailExtractor interface {
	DetailHTML(doc *goquery.Document) (string, error)
}

// DownloadResolver is implemented by sites offering .torrent downloads.
type DownloadResolver interface {
	ResolveDownload(ctx context.Context, f Fetcher, proxy string, d Detail) (DownloadTarget, error)
}

// Category is one entry of a site's category filter.
type Category struct {
	Code int
	Name string
}

// CategoryLister is implemented by sites whose searches take a numeric
// category code.
type CategoryLister interface {
	Categories(ctx context.Context, f Fetcher, proxy string) ([]Category, error)
}
