package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/litescript/torrench/internal/engine"
)

// IndexHeader marks where the index column goes in a site's headers.
const IndexHeader = "INDEX"

// MaxNameWidth caps the NAME column so rows stay on one line.
const MaxNameWidth = 60

// Results renders rows as a grid in header order, with the index column
// printed as --N--. VIP and trusted rows use their own styles.
func Results(headers []string, rows []engine.Row) string {
	styles := GetStyles()

	idxCol, nameCol := -1, -1
	for i, h := range headers {
		switch {
		case h == IndexHeader:
			idxCol = i
		case strings.HasPrefix(h, "NAME") && nameCol == -1:
			nameCol = i
		}
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		line := make([]string, 0, len(headers))
		f := 0
		for c := range headers {
			if c == idxCol {
				line = append(line, fmt.Sprintf("--%d--", row.Index))
				continue
			}
			v := ""
			if f < len(row.Fields) {
				v = row.Fields[f]
			}
			f++
			if c == nameCol {
				v = TruncateString(v, MaxNameWidth)
			}
			line = append(line, v)
		}
		cells[r] = line
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.TableHeader
			case col == idxCol:
				return styles.Index
			}
			switch rows[row].Highlight {
			case engine.HighlightVIP:
				return styles.VIP
			case engine.HighlightTrusted:
				return styles.Trusted
			}
			return styles.TableRow
		})
	return t.String()
}

// Summary is printed under the result grid.
func Summary(results, pages int, elapsed time.Duration) string {
	s := fmt.Sprintf("\nTotal %d torrents [%d pages]\nTotal time: %.2f sec", results, pages, elapsed.Seconds())
	return GetStyles().Title.Render(s)
}

// Files renders a torrent's file list.
func Files(files []engine.FileInfo) string {
	styles := GetStyles()
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{fmt.Sprint(i + 1), f.Name, f.Size}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers("#", "FILE", "SIZE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			return styles.TableRow
		}).
		String()
}

// Categories renders a site's category codes.
func Categories(cats []engine.Category) string {
	styles := GetStyles()
	rows := make([][]string, len(cats))
	for i, c := range cats {
		rows[i] = []string{fmt.Sprint(c.Code), c.Name}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers("CODE", "CATEGORY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			return styles.TableRow
		}).
		String()
}
