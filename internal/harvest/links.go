// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

// releasePattern matches a 4-digit release segment such as "0318".
var releasePattern = regexp.MustCompile(`^\d{4}$`)

// ExtractLinks parses html and returns every anchor whose URL path ends in
// ext (case-insensitive), resolved against base when base is non-nil.
// The result is deduplicated by resolved URL and keeps page order.
func ExtractLinks(html io.Reader, base *url.URL, ext string) ([]types.Link, error) {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return linksFromDocument(doc, base, ext), nil
}

func linksFromDocument(doc *goquery.Document, base *url.URL, ext string) []types.Link {
	ext = strings.ToLower(ext)
	seen := make(map[string]bool)
	var links []types.Link

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		u, err := resolve(base, href)
		if err != nil {
			return
		}
		if !strings.HasSuffix(strings.ToLower(u.Path), ext) {
			return
		}
		name := Filename(u)
		if name == "" || !strings.HasSuffix(strings.ToLower(name), ext) {
			return
		}
		key := u.String()
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, types.Link{Href: href, URL: key, Filename: name})
	})
	return links
}

// iframeSources returns the resolved src of every iframe in doc, deduplicated.
func iframeSources(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	var srcs []string
	doc.Find("iframe[src]").Each(func(_ int, f *goquery.Selection) {
		src, _ := f.Attr("src")
		u, err := resolve(base, strings.TrimSpace(src))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		if s := u.String(); !seen[s] {
			seen[s] = true
			srcs = append(srcs, s)
		}
	})
	return srcs
}

// resolve parses href and resolves it against base. The fragment is dropped
// so "a.pdf#page=2" and "a.pdf" are the same document.
func resolve(base *url.URL, href string) (*url.URL, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

// Filename returns the final path segment of u, unescaped, or "" when the
// path has no usable file name.
func Filename(u *url.URL) string {
	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	name := path.Base(p)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return strings.ReplaceAll(name, `\`, "_")
}

// ReleaseDir returns the last 4-digit directory segment of the link's URL
// path, or "". For ".../releases/2025/0318/x.pdf" that is "0318".
func ReleaseDir(link types.Link) string {
	u, err := url.Parse(link.URL)
	if err != nil {
		return ""
	}
	segs := strings.Split(path.Dir(u.Path), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if releasePattern.MatchString(segs[i]) {
			return segs[i]
		}
	}
	return ""
}

// FilterHost keeps links whose host equals suffix or ends in "."+suffix.
// An empty suffix keeps everything.
func FilterHost(links []types.Link, suffix string) []types.Link {
	suffix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(suffix), "."))
	if suffix == "" {
		return links
	}
	var kept []types.Link
	for _, l := range links {
		u, err := url.Parse(l.URL)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			kept = append(kept, l)
		}
	}
	return kept
}
