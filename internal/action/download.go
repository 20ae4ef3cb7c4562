package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/litescript/torrench/internal/engine"
	"github.com/litescript/torrench/internal/tui"
	"github.com/spf13/afero"
)

func (d *Dispatcher) download(ctx context.Context, det engine.Detail) error {
	resolver, ok := d.Site.(engine.DownloadResolver)
	if !ok {
		return fmt.Errorf("%s does not offer torrent files", d.Site.Name())
	}
	target, err := resolver.ResolveDownload(ctx, d.Fetcher, d.Proxy, det)
	if err != nil {
		return err
	}

	path := filepath.Join(d.DownloadDir, target.FileName)
	var n int64
	err = writeAtomic(d.FS, path, func(w io.Writer) error {
		var err error
		n, err = d.Downloader.Download(ctx, target.URL, w)
		return err
	})
	if err != nil {
		return err
	}

	d.logger().Info("torrent downloaded", "url", target.URL, "path", path, "bytes", n)
	fmt.Fprintf(d.Out, "%s %s (%s)\n", tui.Success("Downloaded to"), path, tui.FormatSize(n))
	return nil
}

func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	return writeAtomic(fs, path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeAtomic creates path's directory on demand, writes through a temp
// file next to path and renames it into place. The temp file is removed
// on any failure, so path is either complete or untouched.
func writeAtomic(fs afero.Fs, path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, ".torrench-*.part")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fs.Rename(tmp.Name(), path); err != nil {
		return err
	}
	return fs.Chmod(path, os.FileMode(0o644))
}
