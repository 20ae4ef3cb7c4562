package engine_test

import (
	"context"
	"testing"

	"github.com/litescript/torrench/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagesOf(htmls ...string) []engine.Page {
	pages := make([]engine.Page, len(htmls))
	for i, h := range htmls {
		pages[i] = engine.Page{Page: i, URL: "http://mirror/p", Doc: mustDoc(h)}
	}
	return pages
}

func TestParseIndicesAreContiguousAcrossPages(t *testing.T) {
	pages := pagesOf(listPage("a", "b", "c"), listPage("d"), listPage("e", "f"))

	res, err := engine.Parse(pages, listSite{}, "http://mirror")
	require.NoError(t, err)
	require.Len(t, res.Rows, 6)
	assert.Equal(t, 6, res.Index.Len())

	for i, row := range res.Rows {
		assert.Equal(t, i+1, row.Index)
		d, ok := res.Index.Lookup(i + 1)
		require.True(t, ok)
		assert.Equal(t, row.Fields[0], d.Name)
	}
	_, ok := res.Index.Lookup(0)
	assert.False(t, ok)
	_, ok = res.Index.Lookup(7)
	assert.False(t, ok)
}

func TestParseIsIdempotent(t *testing.T) {
	html := []string{listPage("x", "y"), listPage("z")}

	first, err := engine.Parse(pagesOf(html...), listSite{}, "http://mirror")
	require.NoError(t, err)
	second, err := engine.Parse(pagesOf(html...), listSite{}, "http://mirror")
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Index, second.Index)
}

func TestParseDefaultsMissingOptionalField(t *testing.T) {
	html := `<ul class="results">
		<li><a class="name" href="/t/1">one</a><span class="c">4</span></li>
		<li><a class="name" href="/t/2">two</a></li>
		<li><a class="name" href="/t/3">three</a><span class="c">1</span></li>
	</ul>`

	res, err := engine.Parse(pagesOf(html), listSite{}, "http://mirror")
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, []string{"two", "0"}, res.Rows[1].Fields)
	assert.Equal(t, "4", res.Rows[0].Fields[1])
}

func TestParseNoListingsIsNoResults(t *testing.T) {
	res, err := engine.Parse(pagesOf(`<p>nothing</p>`, `<ul class="results"></ul>`), listSite{}, "http://mirror")
	require.ErrorIs(t, err, engine.ErrNoResults)
	assert.True(t, engine.IsFatal(err))
	assert.Nil(t, res.Rows)
}

func TestParseMissingRequiredFieldAbortsWholeParse(t *testing.T) {
	html := `<ul class="results">
		<li><a class="name" href="/t/1">one</a></li>
		<li><span class="c">9</span></li>
	</ul>`

	res, err := engine.Parse(pagesOf(listPage("ok"), html), listSite{}, "http://mirror")
	require.ErrorIs(t, err, engine.ErrParse)
	assert.Nil(t, res.Rows)

	var e *engine.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "name", e.Field)
	assert.Equal(t, 2, e.Page)
	assert.Equal(t, "list", e.Site)
}

func TestSearchEndToEnd(t *testing.T) {
	f := newFakeFetcher()
	f.pages["http://goodC/probe"] = listPage("probe")
	f.pages["http://goodC/search/ubuntu/1"] = listPage("u1", "u2")
	f.pages["http://goodC/search/ubuntu/2"] = listPage("u3")

	b, err := engine.NewBudget("ubuntu", 2, engine.ModeSearch)
	require.NoError(t, err)

	s, err := engine.Search(context.Background(), listSite{}, b, engine.Options{
		Candidates: []string{"http://badA", "http://badB", "http://goodC"},
		Fetcher:    f,
	})
	require.NoError(t, err)
	assert.Equal(t, "http://goodC", s.Proxy)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 2, s.Pages)
	assert.Equal(t, 3, s.Index.Len())

	d, ok := s.Index.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, "http://goodC/t/u3", d.Upstream)
}

func TestSearchStampsSiteOnFailure(t *testing.T) {
	f := newFakeFetcher()
	f.pages["http://m/probe"] = listPage("probe")
	f.pages["http://m/search/q/1"] = `<p>empty</p>`

	b, _ := engine.NewBudget("q", 1, engine.ModeSearch)
	_, err := engine.Search(context.Background(), listSite{}, b, engine.Options{
		Candidates: []string{"http://m"},
		Fetcher:    f,
	})
	require.ErrorIs(t, err, engine.ErrNoResults)

	var e *engine.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "list", e.Site)
	assert.Equal(t, "http://m", e.Proxy)
	assert.Equal(t, "No results found for given input!", engine.UserMessage(err))
}
