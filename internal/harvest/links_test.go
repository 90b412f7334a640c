// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

func hrefs(links []types.Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Href)
	}
	return out
}

func TestExtractLinks_MixedCase(t *testing.T) {
	html := `<html><body>
<a href="doc1.pdf">one</a>
<a href="doc2.PDF">two</a>
<a href="notes.txt">notes</a>
</body></html>`

	links, err := ExtractLinks(strings.NewReader(html), nil, ".pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1.pdf", "doc2.PDF"}, hrefs(links))
	assert.Equal(t, "doc2.PDF", links[1].Filename)
}

func TestExtractLinks_CountsAndOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	var want []string
	for i := 0; i < 7; i++ {
		href := fmt.Sprintf("/files/%02d.pdf", i)
		want = append(want, href)
		fmt.Fprintf(&b, `<a href="%s">doc</a><a href="/files/%02d.html">page</a>`, href, i)
	}
	// Duplicates later in the page do not reappear.
	b.WriteString(`<a href="/files/03.pdf">again</a>`)
	b.WriteString("</body></html>")

	base, _ := url.Parse("https://example.com/index.html")
	links, err := ExtractLinks(strings.NewReader(b.String()), base, ".pdf")
	require.NoError(t, err)
	assert.Equal(t, want, hrefs(links))
	assert.Equal(t, "https://example.com/files/00.pdf", links[0].URL)
}

func TestExtractLinks_Resolution(t *testing.T) {
	html := `
<a href="relative/a.pdf">a</a>
<a href="../up/b.pdf">b</a>
<a href="https://cdn.example.org/c.pdf?download=1">c</a>
<a href="d.pdf#page=3">d</a>
<a href="d.pdf">d again</a>
<a href="/e%20space.pdf">e</a>
<a href="/folder.pdf/">folder</a>
<a href="">empty</a>
<a>no href</a>
<a href="report.pdf.zip">zip</a>`

	base, _ := url.Parse("https://example.com/research/release/index.html")
	links, err := ExtractLinks(strings.NewReader(html), base, ".pdf")
	require.NoError(t, err)

	var urls, names []string
	for _, l := range links {
		urls = append(urls, l.URL)
		names = append(names, l.Filename)
	}
	assert.Equal(t, []string{
		"https://example.com/research/release/relative/a.pdf",
		"https://example.com/research/up/b.pdf",
		"https://cdn.example.org/c.pdf?download=1",
		"https://example.com/research/release/d.pdf",
		"https://example.com/e%20space.pdf",
	}, urls)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e space.pdf"}, names)
}

func TestExtractLinks_OtherExtension(t *testing.T) {
	html := `<a href="a.csv">a</a><a href="b.pdf">b</a><a href="C.CSV">c</a>`
	links, err := ExtractLinks(strings.NewReader(html), nil, ".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "C.CSV"}, hrefs(links))
}

func TestExtractLinks_NoMatches(t *testing.T) {
	links, err := ExtractLinks(strings.NewReader(`<p>nothing here</p>`), nil, ".pdf")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://example.com/a/b/file.pdf", "file.pdf"},
		{"https://example.com/a/b/", ""},
		{"https://example.com", ""},
		{"https://example.com/a%2Fb.pdf", "b.pdf"},
		{"https://example.com/odd%5Cname.pdf", "odd_name.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Filename(u))
		})
	}
}

func TestReleaseDir(t *testing.T) {
	assert.Equal(t, "0318", ReleaseDir(types.Link{URL: "https://www.archives.gov/files/research/jfk/releases/2025/0318/104-10003-10041.pdf"}))
	assert.Equal(t, "", ReleaseDir(types.Link{URL: "https://example.com/docs/a.pdf"}))
}

func TestFilterHost(t *testing.T) {
	links := []types.Link{
		{URL: "https://www.archives.gov/a.pdf"},
		{URL: "https://archives.gov/b.pdf"},
		{URL: "https://notarchives.gov/c.pdf"},
		{URL: "https://example.com/d.pdf"},
	}
	got := FilterHost(links, "archives.gov")
	require.Len(t, got, 2)
	assert.Equal(t, "https://www.archives.gov/a.pdf", got[0].URL)
	assert.Equal(t, "https://archives.gov/b.pdf", got[1].URL)

	assert.Len(t, FilterHost(links, ""), 4)
}
