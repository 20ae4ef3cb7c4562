// Package fetch is the HTTP side of the pipeline: GET a page within a fixed
// timeout, parse it into a goquery document, and report how long it took.
// It can route traffic through a SOCKS5 proxy and pace requests.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every request. Slower mirrors count as unreachable.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is sent unless configured otherwise.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string

	// RequestsPerSecond paces requests when positive.
	RequestsPerSecond float64

	// SocksProxy routes requests through socks5://[user:pass@]host:port.
	SocksProxy string
}

// Client fetches pages and files.
type Client struct {
	http    *http.Client
	ua      string
	limiter *rate.Limiter
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.SocksProxy != "" {
		dial, err := socksDialer(opts.SocksProxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dial
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		ua:      opts.UserAgent,
		limiter: limiter,
	}, nil
}

func socksDialer(raw string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid socks proxy: %w", err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("invalid socks proxy: unsupported scheme %q", u.Scheme)
	}

	var auth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: pass}
	}

	d, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("invalid socks proxy: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return func(_ context.Context, network, addr string) (net.Conn, error) {
			return d.Dial(network, addr)
		}, nil
	}
	return cd.DialContext, nil
}

// Fetch GETs rawURL and parses the body as HTML. The duration covers the
// request and the body read.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*goquery.Document, time.Duration, error) {
	start := time.Now()
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return doc, time.Since(start), nil
}

// Download GETs rawURL and copies the body to w.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return n, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}
