package action_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/litescript/torrench/internal/action"
	"github.com/litescript/torrench/internal/engine"
	"github.com/litescript/torrench/internal/fetch"
	"github.com/litescript/torrench/internal/scraper"
	"github.com/litescript/torrench/internal/selection"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pages map[string]string

func (p pages) Fetch(_ context.Context, url string) (*goquery.Document, time.Duration, error) {
	body, ok := p[url]
	if !ok {
		return nil, 0, &engine.Error{Kind: engine.ErrFetch, URL: url, Err: errors.New("HTTP 404")}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	return doc, time.Millisecond, err
}

type loader struct {
	got []string
	err error
}

func (l *loader) Load(_ context.Context, magnet string) (string, error) {
	l.got = append(l.got, magnet)
	return "PID: 4242", l.err
}

func newDispatcher(site engine.Site, f engine.Fetcher) (*action.Dispatcher, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &action.Dispatcher{
		Site:        site,
		Proxy:       "https://mirror",
		Fetcher:     f,
		FS:          afero.NewMemMapFs(),
		DownloadDir: "/home/u/Downloads/torrench",
		DetailsDir:  "/home/u/.torrench/temp",
		Out:         out,
	}, out
}

var sintel = engine.Detail{
	Name:     "Sintel",
	Link:     "magnet:?xt=urn:btih:abc&dn=Sintel",
	Upstream: "https://mirror/torrent/7",
}

func TestPrintShowsLinks(t *testing.T) {
	d, out := newDispatcher(scraper.ThePirateBay{}, pages{})

	require.NoError(t, d.Dispatch(context.Background(), engine.ActionPrint, 7, sintel))
	assert.Contains(t, out.String(), "Magnetic link - [7]")
	assert.Contains(t, out.String(), sintel.Link)
	assert.Contains(t, out.String(), "Upstream link - [7]")
	assert.Contains(t, out.String(), sintel.Upstream)
	assert.NotContains(t, out.String(), "clipboard")
}

func TestPrintCopiesToClipboard(t *testing.T) {
	d, out := newDispatcher(scraper.ThePirateBay{}, pages{})
	var copied string
	d.Copy = true
	d.Clipboard = func(s string) error { copied = s; return nil }

	require.NoError(t, d.Dispatch(context.Background(), engine.ActionPrint, 1, sintel))
	assert.Equal(t, sintel.Link, copied)
	assert.Contains(t, out.String(), "copied to clipboard")

	// a missing clipboard never fails the print
	d.Clipboard = func(string) error { return errors.New("no xclip") }
	require.NoError(t, d.Dispatch(context.Background(), engine.ActionPrint, 1, sintel))
	assert.Contains(t, out.String(), "clipboard unavailable")
}

func TestLoad(t *testing.T) {
	d, out := newDispatcher(scraper.ThePirateBay{}, pages{})

	err := d.Dispatch(context.Background(), engine.ActionLoad, 1, sintel)
	require.ErrorIs(t, err, engine.ErrAction)
	assert.False(t, engine.IsFatal(err))

	l := &loader{}
	d.Client = l
	require.NoError(t, d.Dispatch(context.Background(), engine.ActionLoad, 1, sintel))
	assert.Equal(t, []string{sintel.Link}, l.got)
	assert.Contains(t, out.String(), "Success (PID: 4242)")

	l.err = errors.New("transmission-remote: Couldn't connect to server")
	err = d.Dispatch(context.Background(), engine.ActionLoad, 1, sintel)
	require.ErrorIs(t, err, engine.ErrAction)
	assert.Contains(t, engine.UserMessage(err), "Couldn't connect to server")
}

func TestDetailsWritesMarkdownKeyedByIndex(t *testing.T) {
	f := pages{sintel.Upstream: `<html><body><div id="nav">menu</div>
<div id="title">Sintel</div>
<div class="nfo"><pre>Open movie by the <b>Blender</b> Foundation</pre></div>
<div id="comments"><p>great</p></div></body></html>`}
	d, out := newDispatcher(scraper.ThePirateBay{}, f)

	require.NoError(t, d.Dispatch(context.Background(), engine.ActionDetails, 3, sintel))

	path := action.DetailsPath(d.DetailsDir, "tpb", 3)
	assert.Equal(t, "/home/u/.torrench/temp/tpb_details_3.md", filepath.ToSlash(path))
	data, err := afero.ReadFile(d.FS, path)
	require.NoError(t, err)
	md := string(data)
	assert.True(t, strings.HasPrefix(md, "# Sintel\n"))
	assert.Contains(t, md, "Blender")
	assert.Contains(t, md, "great")
	assert.NotContains(t, md, "menu")
	assert.Contains(t, out.String(), path)
}

func TestDetailsFetchFailureIsRecoverable(t *testing.T) {
	d, _ := newDispatcher(scraper.ThePirateBay{}, pages{})

	err := d.Dispatch(context.Background(), engine.ActionDetails, 1, sintel)
	require.ErrorIs(t, err, engine.ErrAction)
	assert.ErrorIs(t, err, engine.ErrFetch)
	assert.False(t, engine.IsFatal(err))

	exists, _ := afero.DirExists(d.FS, d.DetailsDir)
	assert.False(t, exists)
}

func TestFiles(t *testing.T) {
	det := engine.Detail{Name: "tails", Upstream: "https://mirror/info/tails/", Files: 1}
	f := pages{det.Upstream: `<table><tr><th>File</th><th>Size</th></tr><tr><td>tails.iso</td><td>1.1 GB</td></tr></table>`}
	d, out := newDispatcher(scraper.SkyTorrents{}, f)

	require.NoError(t, d.Dispatch(context.Background(), engine.ActionFiles, 1, det))
	assert.Contains(t, out.String(), "tails.iso")

	d, _ = newDispatcher(scraper.ThePirateBay{}, f)
	assert.ErrorIs(t, d.Dispatch(context.Background(), engine.ActionFiles, 1, det), engine.ErrAction)
}

func TestDownloadWritesTorrentFile(t *testing.T) {
	payload := "d8:announce35:udp://tracker.example:1337/announcee"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/9.torrent" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	client, err := fetch.New(fetch.Options{})
	require.NoError(t, err)

	d, out := newDispatcher(scraper.Nyaa{}, pages{})
	d.Downloader = client

	det := engine.Detail{Name: "Show 09", Download: srv.URL + "/download/9.torrent"}
	require.NoError(t, d.Dispatch(context.Background(), engine.ActionDownload, 1, det))

	path := filepath.Join(d.DownloadDir, "Show 09.torrent")
	data, err := afero.ReadFile(d.FS, path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
	assert.Contains(t, out.String(), path)

	entries, err := afero.ReadDir(d.FS, d.DownloadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// a failed transfer leaves nothing behind
	det = engine.Detail{Name: "Show 10", Download: srv.URL + "/download/10.torrent"}
	err = d.Dispatch(context.Background(), engine.ActionDownload, 2, det)
	require.ErrorIs(t, err, engine.ErrAction)
	entries, err = afero.ReadDir(d.FS, d.DownloadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownloadUnsupportedSite(t *testing.T) {
	d, _ := newDispatcher(scraper.ThePirateBay{}, pages{})
	err := d.Dispatch(context.Background(), engine.ActionDownload, 1, sintel)
	assert.ErrorIs(t, err, engine.ErrAction)
}

func TestClearArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/tmp/details"
	for _, name := range []string{"tpb_details_1.md", "tpb_details_2.md", "notes.txt"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), []byte("x"), 0o644))
	}

	n, err := action.ClearArtifacts(fs, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	ok, _ := afero.Exists(fs, filepath.Join(dir, "notes.txt"))
	assert.True(t, ok)

	n, err = action.ClearArtifacts(fs, "/nowhere")
	require.NoError(t, err)
	assert.Zero(t, n)
}

type lines []string

func (l *lines) Prompt(context.Context, string) (string, error) {
	if len(*l) == 0 {
		return "", context.Canceled
	}
	s := (*l)[0]
	*l = (*l)[1:]
	return s, nil
}

func TestSelectIndexThenPrint(t *testing.T) {
	index := engine.NewIndexMap(
		engine.Detail{Name: "one", Link: "magnet:?xt=1", Upstream: "https://mirror/torrent/1"},
		engine.Detail{Name: "two", Link: "magnet:?xt=2", Upstream: "https://mirror/torrent/2"},
	)
	d, out := newDispatcher(scraper.ThePirateBay{}, pages{})
	c := &selection.Controller{
		Index:    index,
		Actions:  scraper.ThePirateBay{}.Actions(),
		Prompter: &lines{"2", "p"},
		Dispatch: d,
		Out:      out,
	}

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "magnet:?xt=2")
	assert.Contains(t, out.String(), "https://mirror/torrent/2")
	assert.NotContains(t, out.String(), "magnet:?xt=1")
}
