package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// clean collapses whitespace. strings.Fields also splits on the
// non-breaking spaces most of these sites pad their cells with.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func text(s *goquery.Selection) string {
	return clean(s.Text())
}

// ownText returns the first text node directly under s, ignoring children.
func ownText(s *goquery.Selection) string {
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				if t := clean(c.Data); t != "" {
					return t
				}
			}
		}
	}
	return ""
}

// wordFromEnd returns the n-th whitespace separated word counting from the
// end (n=1 is the last word).
func wordFromEnd(s string, n int) string {
	words := strings.Fields(s)
	if n < 1 || n > len(words) {
		return ""
	}
	return words[len(words)-n]
}

// absolute resolves href against the mirror base.
func absolute(base, href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"), strings.HasPrefix(href, "magnet:"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}

func trimBase(proxy string) string {
	return strings.TrimRight(proxy, "/")
}

// extractMagnetName parses the dn (display name) parameter of a magnet link.
func extractMagnetName(magnet string) string {
	idx := strings.Index(magnet, "dn=")
	if idx == -1 {
		return ""
	}
	name := magnet[idx+3:]
	if end := strings.Index(name, "&"); end != -1 {
		name = name[:end]
	}
	decoded, err := url.QueryUnescape(name)
	if err != nil {
		return strings.ReplaceAll(name, "+", " ")
	}
	return decoded
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

func firstNumber(s string) string {
	if m := leadingNumber.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._\-\[\]() ]+`)

// fileName makes name safe to use as a file name.
func fileName(name, ext string) string {
	name = strings.TrimSpace(unsafeFileChars.ReplaceAllString(name, "_"))
	if name == "" {
		name = "torrent"
	}
	if !strings.HasSuffix(name, ext) {
		name += ext
	}
	return name
}
