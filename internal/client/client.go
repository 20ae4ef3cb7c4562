// Package client hands magnet links to a torrent client. Transmission is
// driven through transmission-remote, qBittorrent through its Web API, and
// any other configured name is started as a process with the magnet link
// as its only argument.
package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/litescript/torrench/internal/qbit"
)

// Kinds with built-in handling.
const (
	TransmissionRemote = "transmission-remote"
	QBittorrent        = "qbittorrent"
)

// remoteTimeout bounds a transmission-remote call.
const remoteTimeout = 30 * time.Second

// Config selects and addresses the client.
type Config struct {
	Name     string
	Host     string
	Port     int
	Username string
	Password string
	SavePath string
}

// Loader hands a magnet link to a client.
type Loader interface {
	Load(ctx context.Context, magnet string) (string, error)
}

// New returns the loader for cfg.Name, or nil when no client is configured.
func New(cfg Config) Loader {
	switch strings.ToLower(cfg.Name) {
	case "":
		return nil
	case TransmissionRemote:
		return &Transmission{Host: cfg.Host, Port: cfg.Port, Username: cfg.Username, Password: cfg.Password, run: runCommand}
	case QBittorrent:
		return &QBit{api: qbit.NewClient(cfg.Host, cfg.Port, cfg.Username, cfg.Password), savePath: cfg.SavePath}
	}
	return &Process{Name: cfg.Name}
}

// runFunc runs a command to completion and returns its output streams.
type runFunc func(ctx context.Context, name string, args, env []string) (stdout, stderr []byte, err error)

func runCommand(ctx context.Context, name string, args, env []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Transmission adds magnets through transmission-remote. Credentials are
// passed via TR_AUTH rather than on the command line.
type Transmission struct {
	Host     string
	Port     int
	Username string
	Password string

	run runFunc
}

func (t *Transmission) Load(ctx context.Context, magnet string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)
	args := []string{addr}
	var env []string
	switch {
	case t.Username != "":
		env = append(env, "TR_AUTH="+t.Username+":"+t.Password)
		args = append(args, "-ne")
	case os.Getenv("TR_AUTH") != "":
		args = append(args, "-ne")
	}
	args = append(args, "--add", magnet)

	stdout, stderr, err := t.run(ctx, TransmissionRemote, args, env)
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return "", fmt.Errorf("%s: %s", TransmissionRemote, msg)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", TransmissionRemote, err)
	}
	out := strings.TrimSpace(string(stdout))
	if out == "" {
		out = "added"
	}
	return fmt.Sprintf("%s %s", addr, out), nil
}

// QBit adds magnets through the qBittorrent Web API.
type QBit struct {
	api      *qbit.Client
	savePath string
}

func (q *QBit) Load(ctx context.Context, magnet string) (string, error) {
	if err := q.api.AddMagnet(ctx, magnet, q.savePath); err != nil {
		return "", err
	}
	v, err := q.api.Version(ctx)
	if err != nil || v == "" {
		return "added to qBittorrent", nil
	}
	return "added to qBittorrent " + v, nil
}

// Process starts Name with the magnet link and leaves it running.
type Process struct {
	Name string
}

func (p *Process) Load(_ context.Context, magnet string) (string, error) {
	path, err := exec.LookPath(p.Name)
	if err != nil {
		return "", fmt.Errorf("start client: %w", err)
	}
	// not tied to ctx: the client outlives this program
	cmd := exec.Command(path, magnet)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", p.Name, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return "", err
	}
	return fmt.Sprintf("PID: %d", pid), nil
}
