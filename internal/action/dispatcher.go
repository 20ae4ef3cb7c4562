// Package action carries out what the user picked for a selected result:
// print its links, hand the magnet to a torrent client, save its detail
// page, list its files, or download its .torrent file.
package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/litescript/torrench/internal/engine"
	"github.com/litescript/torrench/internal/tui"
	"github.com/spf13/afero"
)

// Loader hands a magnet link to a torrent client and describes the outcome.
type Loader interface {
	Load(ctx context.Context, magnet string) (string, error)
}

// Downloader copies the body at url into w.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Dispatcher runs actions for one session.
type Dispatcher struct {
	Site       engine.Site
	Proxy      string
	Fetcher    engine.Fetcher
	Downloader Downloader
	Client     Loader // nil when no client is configured

	FS          afero.Fs
	DownloadDir string
	DetailsDir  string

	// Copy puts printed magnet links on the clipboard.
	Copy      bool
	Clipboard func(string) error

	Out io.Writer
	Log *slog.Logger
}

// Dispatch implements selection.Dispatcher. Failures come back as
// engine.ErrAction; cancellation comes back unwrapped.
func (d *Dispatcher) Dispatch(ctx context.Context, kind engine.ActionKind, index int, det engine.Detail) error {
	var err error
	switch kind {
	case engine.ActionPrint:
		d.print(index, det)
	case engine.ActionLoad:
		err = d.load(ctx, det)
	case engine.ActionDetails:
		err = d.details(ctx, index, det)
	case engine.ActionFiles:
		err = d.files(ctx, det)
	case engine.ActionDownload:
		err = d.download(ctx, det)
	default:
		err = fmt.Errorf("unknown action %d", kind)
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return ctx.Err()
	}
	return &engine.Error{Kind: engine.ErrAction, Site: d.Site.Key(), Proxy: d.Proxy, URL: det.Upstream, Err: err}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Log
}

func (d *Dispatcher) print(index int, det engine.Detail) {
	styles := tui.GetStyles()
	fmt.Fprintf(d.Out, "\nMagnetic link - [%d]\n%s\n", index, styles.Link.Render(det.Link))
	fmt.Fprintf(d.Out, "\nUpstream link - [%d]\n%s\n", index, styles.Link.Render(det.Upstream))

	if !d.Copy {
		return
	}
	write := d.Clipboard
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(det.Link); err != nil {
		d.logger().Warn("clipboard copy failed", "err", err)
		fmt.Fprintln(d.Out, tui.Muted("(clipboard unavailable)"))
		return
	}
	fmt.Fprintln(d.Out, tui.Success("(magnetic link copied to clipboard)"))
}

func (d *Dispatcher) load(ctx context.Context, det engine.Detail) error {
	if d.Client == nil {
		return errors.New("no torrent client configured")
	}
	msg, err := d.Client.Load(ctx, det.Link)
	if err != nil {
		return err
	}
	d.logger().Info("magnet loaded", "name", det.Name, "result", msg)
	fmt.Fprintln(d.Out, tui.Success("Success ("+msg+")"))
	return nil
}

func (d *Dispatcher) files(ctx context.Context, det engine.Detail) error {
	lister, ok := d.Site.(engine.FileLister)
	if !ok {
		return fmt.Errorf("%s does not list torrent files", d.Site.Name())
	}
	doc, _, err := d.Fetcher.Fetch(ctx, det.Upstream)
	if err != nil {
		return err
	}
	files, err := lister.ListFiles(doc, det)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "\n%s\n%s\n", det.Name, tui.Files(files))
	return nil
}
