package action

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/litescript/torrench/internal/engine"
	"github.com/spf13/afero"
)

var markdown = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal)),
	),
)

// DetailsPath is where the details of result index are stored for site.
func DetailsPath(dir, site string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_details_%d.md", site, index))
}

func (d *Dispatcher) details(ctx context.Context, index int, det engine.Detail) error {
	doc, _, err := d.Fetcher.Fetch(ctx, det.Upstream)
	if err != nil {
		return err
	}

	var html string
	if ex, ok := d.Site.(engine.DetailExtractor); ok {
		html, err = ex.DetailHTML(doc)
	} else {
		html, err = doc.Find("body").Html()
	}
	if err != nil {
		return err
	}

	md, err := markdown.ConvertString(html, converter.WithDomain(d.Proxy))
	if err != nil {
		return fmt.Errorf("convert details: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", det.Name)
	fmt.Fprintf(&b, "- Magnet: <%s>\n- Upstream: <%s>\n\n", det.Link, det.Upstream)
	b.WriteString(md)
	b.WriteString("\n")

	path := DetailsPath(d.DetailsDir, d.Site.Key(), index)
	if err := writeFileAtomic(d.FS, path, []byte(b.String())); err != nil {
		return err
	}
	d.logger().Info("details saved", "index", index, "path", path)
	fmt.Fprintln(d.Out, "Details saved to: "+path)
	return nil
}

// ClearArtifacts removes every stored detail file under dir and returns how
// many were removed. A missing dir is not an error.
func ClearArtifacts(fs afero.Fs, dir string) (int, error) {
	matches, err := afero.Glob(fs, filepath.Join(dir, "*_details_*.md"))
	if err != nil {
		return 0, err
	}
	for i, m := range matches {
		if err := fs.Remove(m); err != nil {
			return i, err
		}
	}
	return len(matches), nil
}
