package importers

import (
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(seq iter.Seq[Item]) []Item {
	var items []Item
	for item := range seq {
		items = append(items, item)
	}
	return items
}

const pocketExport = `<!DOCTYPE html>
<html><head><title>Pocket Export</title></head><body>
<h1>Unread</h1>
<ul>
  <li><a href="http://example.com/1" time_added="1">One</a></li>
  <li><a href=" http://example.com/2 ">Two</a></li>
</ul>
<h1>Read Archive</h1>
<ul>
  <li><a href="http://example.com/3">Three</a></li>
</ul>
</body></html>`

func TestNormalizePocket(t *testing.T) {
	seq, err := NormalizePocket(strings.NewReader(pocketExport))
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{URL: "http://example.com/1"},
		{URL: "http://example.com/2"},
		{URL: "http://example.com/3", Archived: true},
	}, collect(seq))
}

func TestNormalizeInstapaper(t *testing.T) {
	export := `<html><body>
<h1>Unread</h1>
<ol><li><a href="http://example.com/a">A</a></li></ol>
<h1>Archive</h1>
<ol><li><a href="http://example.com/b">B</a></li><li><a href="http://example.com/c">C</a></li></ol>
<ul><li><a href="http://example.com/ignored">not an ol</a></li></ul>
</body></html>`

	seq, err := NormalizeInstapaper(strings.NewReader(export))
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{URL: "http://example.com/a"},
		{URL: "http://example.com/b", Archived: true},
		{URL: "http://example.com/c", Archived: true},
	}, collect(seq))
}

func TestNormalizeHTML_ItemWithoutLink(t *testing.T) {
	seq, err := NormalizePocket(strings.NewReader(`<ul><li>no link</li><li><a href="http://example.com/x">x</a></li></ul>`))
	require.NoError(t, err)

	items := collect(seq)
	require.Len(t, items, 2)
	assert.Empty(t, items[0].URL)
}

func TestNormalize_StopsWhenConsumerStops(t *testing.T) {
	seq, err := NormalizePocket(strings.NewReader(pocketExport))
	require.NoError(t, err)

	var seen int
	for range seq {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestNormalizeReadability(t *testing.T) {
	export := `{
		"bookmarks": [
			{"article__url": "http://example.com/a", "favorite": true, "archive": false},
			{"article__url": "http://example.com/b", "favorite": "false", "archive": "true"},
			{"article__title": "no url"},
			42
		],
		"recommendations": "not a list"
	}`

	seq, err := NormalizeReadability(strings.NewReader(export))
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{URL: "http://example.com/a", Favorite: true},
		{URL: "http://example.com/b", Archived: true},
		{},
		{},
	}, collect(seq))
}

func TestNormalizeReadability_TopLevelList(t *testing.T) {
	seq, err := NormalizeReadability(strings.NewReader(`[{"article__url":"http://example.com/a","archive":true}]`))
	require.NoError(t, err)

	assert.Equal(t, []Item{{URL: "http://example.com/a", Archived: true}}, collect(seq))
}

func TestNormalizePoche(t *testing.T) {
	export := `[
		{"id":"1","url":"http://example.com/a","is_fav":"-1","is_read":"0"},
		{"id":2,"url":"http://example.com/b","is_fav":0,"is_read":-1},
		{"id":3,"url":["broken"]},
		{"id":4,"url":"http://example.com/c"}
	]`

	seq, err := NormalizePoche(strings.NewReader(export))
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{URL: "http://example.com/a", Favorite: true},
		{URL: "http://example.com/b", Archived: true},
		{},
		{URL: "http://example.com/c"},
	}, collect(seq))
}

func TestNormalize_MalformedFiles(t *testing.T) {
	tests := []struct {
		name      string
		normalize Normalizer
		input     string
	}{
		{"poche not a list", NormalizePoche, `{"url":"x"}`},
		{"poche empty", NormalizePoche, ``},
		{"readability scalar", NormalizeReadability, `"text"`},
		{"readability empty", NormalizeReadability, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.normalize(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformedFile)
		})
	}
}

func TestParseProvider(t *testing.T) {
	for _, p := range Providers() {
		parsed, err := ParseProvider(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, parsed)

		normalize, err := parsed.Normalizer()
		require.NoError(t, err)
		assert.NotNil(t, normalize)
	}

	_, err := ParseProvider("delicious")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = Provider("delicious").Normalizer()
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
