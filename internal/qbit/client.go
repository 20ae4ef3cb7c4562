// Package qbit is a minimal client for the qBittorrent Web API: log in and
// add magnet links.
package qbit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// ErrForbidden is returned when qBittorrent rejects the session cookie.
var ErrForbidden = errors.New("qbittorrent: forbidden")

// Client interfaces with qBittorrent Web API
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	loggedIn   bool
}

// NewClient creates a new qBittorrent API client
func NewClient(host string, port int, username, password string) *Client {
	base := host
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if port > 0 {
		base = fmt.Sprintf("%s:%d", strings.TrimRight(base, "/"), port)
	}
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL:  strings.TrimRight(base, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// Login authenticates with the qBittorrent API
func (c *Client) Login(ctx context.Context) error {
	data := url.Values{}
	data.Set("username", c.username)
	data.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/auth/login", strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// qBittorrent checks Referer against its own origin (CSRF protection)
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to qBittorrent: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "Ok." {
		return fmt.Errorf("login failed: %s", strings.TrimSpace(string(body)))
	}

	c.loggedIn = true
	return nil
}

// Version returns the qBittorrent application version.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/app/version", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", ErrForbidden
	}
	body, _ := io.ReadAll(resp.Body)
	return strings.TrimSpace(string(body)), nil
}

// AddMagnet adds a torrent via magnet link. An expired session is renewed
// once.
func (c *Client) AddMagnet(ctx context.Context, magnet, savePath string) error {
	err := c.addMagnet(ctx, magnet, savePath)
	if errors.Is(err, ErrForbidden) {
		c.loggedIn = false
		err = c.addMagnet(ctx, magnet, savePath)
	}
	return err
}

func (c *Client) addMagnet(ctx context.Context, magnet, savePath string) error {
	if !c.loggedIn {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("urls", magnet)
	if savePath != "" {
		_ = writer.WriteField("savepath", savePath)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/torrents/add", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrForbidden
	}
	respBody, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(respBody))
	// a rejected add is still 200, with "Fails." as the body; newer
	// releases answer with a JSON summary instead of "Ok."
	if resp.StatusCode == http.StatusOK && (msg == "Ok." || strings.HasPrefix(msg, "{")) {
		return nil
	}
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("failed to add torrent: %s", msg)
}
