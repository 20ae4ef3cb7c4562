package theme

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

// source reads a palette from one terminal config file.
type source struct {
	path  []string // relative to $HOME
	parse func(path string) (Palette, bool)
}

var sources = []source{
	{[]string{".config", "alacritty", "alacritty.toml"}, parseAlacritty},
	{[]string{".alacritty.toml"}, parseAlacritty},
	{[]string{".config", "kitty", "kitty.conf"}, parseKitty},
	{[]string{".config", "foot", "foot.ini"}, parseFoot},
}

// Detect loads the palette of the first terminal config found, then applies
// environment overrides.
func Detect() Palette {
	home, err := os.UserHomeDir()
	if err != nil {
		return applyEnv(DefaultPalette(), os.Getenv)
	}
	return applyEnv(DetectIn(home), os.Getenv)
}

// DetectIn looks for terminal configs under home.
func DetectIn(home string) Palette {
	for _, s := range sources {
		if p, ok := s.parse(filepath.Join(append([]string{home}, s.path...)...)); ok {
			return p
		}
	}
	return DefaultPalette()
}

// derive fills the colors a terminal config does not carry.
func derive(bg, fg, sel string) Palette {
	p := DefaultPalette()
	p.BG = normalizeHex(bg)
	p.FG = normalizeHex(fg)
	p.Muted = dimColor(p.FG, 0.5)
	if sel != "" {
		p.AccentBg = normalizeHex(sel)
	} else {
		p.AccentBg = MixColors(p.BG, p.FG, 0.15)
	}
	return p
}

type alacrittyConfig struct {
	Colors struct {
		Primary struct {
			Background string `toml:"background"`
			Foreground string `toml:"foreground"`
		} `toml:"primary"`
		Selection struct {
			Background string `toml:"background"`
		} `toml:"selection"`
	} `toml:"colors"`
}

func parseAlacritty(path string) (Palette, bool) {
	var cfg alacrittyConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Palette{}, false
	}
	c := cfg.Colors
	if c.Primary.Background == "" || c.Primary.Foreground == "" {
		return Palette{}, false
	}
	return derive(c.Primary.Background, c.Primary.Foreground, c.Selection.Background), true
}

// kitty.conf is "key value" per line
func parseKitty(path string) (Palette, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Palette{}, false
	}
	defer f.Close()

	kv := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		kv[fields[0]] = fields[1]
	}
	if kv["background"] == "" || kv["foreground"] == "" {
		return Palette{}, false
	}
	return derive(kv["background"], kv["foreground"], kv["selection_background"]), true
}

func parseFoot(path string) (Palette, bool) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Palette{}, false
	}
	colors := cfg.Section("colors")
	bg, fg := colors.Key("background").String(), colors.Key("foreground").String()
	if bg == "" || fg == "" {
		return Palette{}, false
	}
	return derive(bg, fg, colors.Key("selection-background").String()), true
}

// applyEnv applies TORRENCH_* overrides
func applyEnv(p Palette, getenv func(string) string) Palette {
	for name, dst := range map[string]*string{
		"TORRENCH_BG":      &p.BG,
		"TORRENCH_FG":      &p.FG,
		"TORRENCH_MUTED":   &p.Muted,
		"TORRENCH_ACCENT":  &p.Accent,
		"TORRENCH_VIP":     &p.VIP,
		"TORRENCH_TRUSTED": &p.Trusted,
	} {
		if v := getenv(name); v != "" {
			*dst = normalizeHex(v)
		}
	}
	return p
}

var (
	hex6 = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	hex3 = regexp.MustCompile(`^#[0-9a-fA-F]{3}$`)
)

// normalizeHex accepts RRGGBB, #RGB, and 0xRRGGBB forms
func normalizeHex(color string) string {
	color = strings.TrimSpace(color)
	if strings.HasPrefix(color, "0x") || strings.HasPrefix(color, "0X") {
		color = color[2:]
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if hex3.MatchString(color) {
		r, g, b := color[1:2], color[2:3], color[3:4]
		return strings.ToLower("#" + r + r + g + g + b + b)
	}
	if hex6.MatchString(color) {
		return strings.ToLower(color)
	}
	return color
}

func rgb(hex string) (r, g, b float64, ok bool) {
	hex = normalizeHex(hex)
	if !hex6.MatchString(hex) {
		return 0, 0, 0, false
	}
	v, _ := strconv.ParseUint(hex[1:], 16, 32)
	return float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff), true
}

func toHex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(r), uint8(g), uint8(b))
}

func dimColor(hex string, factor float64) string {
	r, g, b, ok := rgb(hex)
	if !ok {
		return hex
	}
	return toHex(r*factor, g*factor, b*factor)
}

// MixColors blends hex1 towards hex2 by t.
func MixColors(hex1, hex2 string, t float64) string {
	r1, g1, b1, ok1 := rgb(hex1)
	r2, g2, b2, ok2 := rgb(hex2)
	if !ok1 || !ok2 {
		return hex1
	}
	mix := func(a, b float64) float64 { return a*(1-t) + b*t }
	return toHex(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}
