// Package theme picks terminal colors for the result table and prompts.
// Colors are read from Alacritty, Kitty, or Foot configuration when present
// and can be overridden with TORRENCH_* environment variables.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette holds the color scheme
type Palette struct {
	BG       string // background
	FG       string // foreground (primary text)
	Muted    string // secondary info, borders
	Accent   string // index column, success
	AccentBg string // highlighted rows
	VIP      string
	Trusted  string
	Error    string
}

// DefaultPalette returns the fallback amber-on-dark theme
func DefaultPalette() Palette {
	return Palette{
		BG:       "#0a0a0a",
		FG:       "#d4a017",
		Muted:    "#6b6b4f",
		Accent:   "#8bc34a",
		AccentBg: "#1a1a14",
		VIP:      "#4fc3f7",
		Trusted:  "#ce93d8",
		Error:    "#ff6b6b",
	}
}

// Styles holds all lipgloss styles derived from a palette
type Styles struct {
	Title       lipgloss.Style
	Border      lipgloss.Style
	TableHeader lipgloss.Style
	TableRow    lipgloss.Style
	Index       lipgloss.Style
	VIP         lipgloss.Style
	Trusted     lipgloss.Style
	Muted       lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Link        lipgloss.Style
	Prompt      lipgloss.Style
	Spinner     lipgloss.Style
}

// NewStyles creates styles from a palette
func NewStyles(p Palette) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.FG)).
			Bold(true),

		Border: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),

		TableHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)).
			Bold(true).
			Padding(0, 1),

		TableRow: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.FG)).
			Padding(0, 1),

		Index: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)).
			Bold(true).
			Padding(0, 1),

		VIP: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.VIP)).
			Background(lipgloss.Color(p.AccentBg)).
			Padding(0, 1),

		Trusted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Trusted)).
			Background(lipgloss.Color(p.AccentBg)).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Error)).
			Bold(true),

		Link: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.FG)).
			Underline(true),

		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)),
	}
}

// Current holds the active palette and styles
var (
	Current        Styles
	CurrentPalette Palette
)

func init() {
	Refresh()
}

// Refresh re-runs detection and rebuilds Current.
func Refresh() {
	CurrentPalette = Detect()
	Current = NewStyles(CurrentPalette)
}
