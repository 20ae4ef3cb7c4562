// Package scraper holds the site adapters. Each adapter knows one site's URL
// layout and listing markup and implements engine.Site; anything generic
// (mirror probing order, pagination, indexing) belongs to the engine.
package scraper

import (
	"sort"

	"github.com/litescript/torrench/internal/engine"
)

// DefaultSite is used when no site is selected on the command line.
const DefaultSite = "linuxtracker"

var registry = map[string]engine.Site{}

func register(s engine.Site) {
	registry[s.Key()] = s
}

func init() {
	register(ThePirateBay{})
	register(Kickass{})
	register(SkyTorrents{})
	register(Nyaa{})
	register(LinuxTracker{})
}

// Lookup returns the adapter registered under key.
func Lookup(key string) (engine.Site, bool) {
	s, ok := registry[key]
	return s, ok
}

// Keys lists registered site keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
