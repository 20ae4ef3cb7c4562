package selection

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/litescript/torrench/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script answers prompts from a fixed list, then reports EOF.
type script struct {
	lines  []string
	labels []string
}

func (s *script) Prompt(_ context.Context, label string) (string, error) {
	s.labels = append(s.labels, label)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}

type call struct {
	kind   engine.ActionKind
	index  int
	detail engine.Detail
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) Dispatch(_ context.Context, kind engine.ActionKind, index int, d engine.Detail) error {
	r.calls = append(r.calls, call{kind, index, d})
	return r.err
}

var details = []engine.Detail{
	{Name: "one", Link: "magnet:?xt=1", Upstream: "https://m/torrent/1"},
	{Name: "two", Link: "magnet:?xt=2", Upstream: "https://m/torrent/2"},
	{Name: "three", Link: "magnet:?xt=3", Upstream: "https://m/torrent/3"},
}

func newController(lines ...string) (*Controller, *script, *recorder, *bytes.Buffer) {
	s := &script{lines: lines}
	r := &recorder{}
	out := &bytes.Buffer{}
	return &Controller{
		Index:    engine.NewIndexMap(details...),
		Actions:  []engine.ActionKind{engine.ActionPrint, engine.ActionLoad, engine.ActionDetails},
		Prompter: s,
		Dispatch: r,
		Out:      out,
	}, s, r, out
}

func TestZeroExits(t *testing.T) {
	c, s, r, _ := newController("0", "1")

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, Exit, c.State())
	assert.Empty(t, r.calls)
	assert.Len(t, s.labels, 1)
}

func TestOutOfRangeAndBadInputStayAwaitingIndex(t *testing.T) {
	for _, in := range []string{"4", "-3", "abc", "", "1.5"} {
		t.Run(in, func(t *testing.T) {
			c, s, r, out := newController(in, "0")

			require.NoError(t, c.Run(context.Background()))
			assert.Empty(t, r.calls)
			assert.Contains(t, out.String(), "Bad input!")
			// rejected input leads straight back to the index prompt
			require.Len(t, s.labels, 2)
			assert.Equal(t, s.labels[0], s.labels[1])
		})
	}
}

func TestSelectThenPrintDispatchesMappedDetail(t *testing.T) {
	c, _, r, out := newController("2", "p", "0")

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, r.calls, 1)
	assert.Equal(t, engine.ActionPrint, r.calls[0].kind)
	assert.Equal(t, 2, r.calls[0].index)
	assert.Equal(t, details[1], r.calls[0].detail)

	assert.Contains(t, out.String(), "Selected index [2] - two")
	assert.Contains(t, out.String(), "[p] Print magnetic link")
	assert.Contains(t, out.String(), "[g] Get torrent details")
}

func TestUnknownActionRepromptsSameSelection(t *testing.T) {
	c, s, r, out := newController("3", "x", "d", "L", "0")

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, r.calls, 1)
	assert.Equal(t, engine.ActionLoad, r.calls[0].kind)
	assert.Equal(t, 3, r.calls[0].index)
	assert.Equal(t, 2, strings.Count(out.String(), "Choose one of the options"))
	// index, option x3, index
	assert.Len(t, s.labels, 5)
}

func TestZeroAtActionPromptGoesBack(t *testing.T) {
	c, _, r, _ := newController("1", "0", "2", "g", "0")

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, r.calls, 1)
	assert.Equal(t, engine.ActionDetails, r.calls[0].kind)
	assert.Equal(t, 2, r.calls[0].index)
}

func TestActionFailureKeepsSessionAlive(t *testing.T) {
	c, _, r, out := newController("1", "l", "1", "p", "0")
	r.err = &engine.Error{Kind: engine.ErrAction, Err: errors.New("client not found")}

	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, r.calls, 2)
	assert.Contains(t, out.String(), "Action failed: client not found")
}

func TestEOFAndInterruptExitCleanly(t *testing.T) {
	c, _, _, _ := newController()
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, Exit, c.State())

	// EOF while the action menu is up
	c, _, r, _ := newController("1")
	require.NoError(t, c.Run(context.Background()))
	assert.Empty(t, r.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewLinePrompter(blockingReader{}, io.Discard)
	c = &Controller{Index: engine.NewIndexMap(details...), Prompter: p, Dispatch: &recorder{}, Out: io.Discard}
	require.NoError(t, c.Run(ctx))
}

func TestPrompterErrorIsReturned(t *testing.T) {
	boom := errors.New("terminal gone")
	c := &Controller{
		Index:    engine.NewIndexMap(details...),
		Prompter: failing{boom},
		Dispatch: &recorder{},
		Out:      io.Discard,
	}
	assert.ErrorIs(t, c.Run(context.Background()), boom)
}

type failing struct{ err error }

func (f failing) Prompt(context.Context, string) (string, error) { return "", f.err }

// blockingReader never returns, like a terminal nobody types into.
type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) { select {} }

func TestLinePrompterReadsLines(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("2\np\n"), &out)
	ctx := context.Background()

	l, err := p.Prompt(ctx, "index: ")
	require.NoError(t, err)
	assert.Equal(t, "2", l)
	l, err = p.Prompt(ctx, "option: ")
	require.NoError(t, err)
	assert.Equal(t, "p", l)
	_, err = p.Prompt(ctx, "index: ")
	assert.ErrorIs(t, err, io.EOF)
	_, err = p.Prompt(ctx, "index: ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "index: option: index: index: ", out.String())
}

func TestMenu(t *testing.T) {
	assert.Equal(t, "[d] Download torrent file\n[0] Go back\n", Menu([]engine.ActionKind{engine.ActionDownload}))
}
