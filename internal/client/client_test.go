package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os/exec"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRun struct {
	name   string
	args   []string
	env    []string
	stdout string
	stderr string
	err    error
}

func (f *fakeRun) run(_ context.Context, name string, args, env []string) ([]byte, []byte, error) {
	f.name, f.args, f.env = name, args, env
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func TestNewPicksKind(t *testing.T) {
	assert.Nil(t, New(Config{}))
	assert.IsType(t, &Transmission{}, New(Config{Name: "transmission-remote"}))
	assert.IsType(t, &QBit{}, New(Config{Name: "qBittorrent", Host: "localhost", Port: 8080}))
	assert.Equal(t, &Process{Name: "deluge"}, New(Config{Name: "deluge"}))
}

func TestTransmissionAddsMagnet(t *testing.T) {
	t.Setenv("TR_AUTH", "")
	f := &fakeRun{stdout: `localhost:9091/transmission/rpc/ responded: "success"`}
	tr := &Transmission{Host: "localhost", Port: 9091, run: f.run}

	msg, err := tr.Load(context.Background(), "magnet:?xt=1")
	require.NoError(t, err)
	assert.Equal(t, "transmission-remote", f.name)
	assert.Equal(t, []string{"localhost:9091", "--add", "magnet:?xt=1"}, f.args)
	assert.Empty(t, f.env)
	assert.Contains(t, msg, "success")
}

func TestTransmissionPassesCredentialsViaEnv(t *testing.T) {
	f := &fakeRun{}
	tr := &Transmission{Host: "nas", Port: 9091, Username: "u", Password: "p", run: f.run}

	_, err := tr.Load(context.Background(), "magnet:?xt=1")
	require.NoError(t, err)
	assert.Equal(t, []string{"nas:9091", "-ne", "--add", "magnet:?xt=1"}, f.args)
	assert.Equal(t, []string{"TR_AUTH=u:p"}, f.env)

	t.Setenv("TR_AUTH", "x:y")
	tr.Username = ""
	_, err = tr.Load(context.Background(), "magnet:?xt=1")
	require.NoError(t, err)
	assert.Equal(t, []string{"nas:9091", "-ne", "--add", "magnet:?xt=1"}, f.args)
	assert.Empty(t, f.env)
}

func TestTransmissionStderrIsFailure(t *testing.T) {
	f := &fakeRun{stderr: "Couldn't connect to server\n"}
	tr := &Transmission{Host: "localhost", Port: 9091, run: f.run}

	_, err := tr.Load(context.Background(), "magnet:?xt=1")
	require.Error(t, err)
	assert.Equal(t, "transmission-remote: Couldn't connect to server", err.Error())

	f = &fakeRun{err: errors.New("exit status 1")}
	tr.run = f.run
	_, err = tr.Load(context.Background(), "magnet:?xt=1")
	assert.Error(t, err)
}

func TestQBitLoad(t *testing.T) {
	var added string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "SID", Value: "1", Path: "/"})
			fmt.Fprint(w, "Ok.")
		case "/api/v2/torrents/add":
			_ = r.ParseMultipartForm(1 << 20)
			added = r.FormValue("urls")
			fmt.Fprint(w, "Ok.")
		case "/api/v2/app/version":
			fmt.Fprint(w, "v5.0.1")
		}
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	l := New(Config{Name: "qbittorrent", Host: u.Hostname(), Port: port, Username: "admin", Password: "x"})

	msg, err := l.Load(context.Background(), "magnet:?xt=2")
	require.NoError(t, err)
	assert.Equal(t, "added to qBittorrent v5.0.1", msg)
	assert.Equal(t, "magnet:?xt=2", added)
}

func TestProcessStartsDetached(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no true binary")
	}
	msg, err := (&Process{Name: "true"}).Load(context.Background(), "magnet:?xt=3")
	require.NoError(t, err)
	assert.Regexp(t, `^PID: \d+$`, msg)

	_, err = (&Process{Name: "surely-not-a-torrent-client"}).Load(context.Background(), "magnet:?xt=3")
	assert.Error(t, err)
}
