package linkmeta

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// HTMLFetcher downloads a page and reads its title, description, preview
// image and icon from the markup.
type HTMLFetcher struct {
	client *resty.Client
}

// NewHTMLFetcher builds a fetcher whose requests give up after timeout.
func NewHTMLFetcher(timeout time.Duration, userAgent string) *HTMLFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &HTMLFetcher{client: client}
}

// Fetch implements Fetcher.
func (f *HTMLFetcher) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return Metadata{}, fmt.Errorf("linkmeta: get %s: %w", rawURL, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return Metadata{}, fmt.Errorf("linkmeta: get %s: http %d", rawURL, resp.StatusCode())
	}
	ct := resp.Header().Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "html") {
		return Metadata{}, fmt.Errorf("linkmeta: get %s: not html (%s)", rawURL, ct)
	}

	doc, err := html.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return Metadata{}, fmt.Errorf("linkmeta: parse html: %w", err)
	}

	base := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		base = resp.RawResponse.Request.URL.String()
	}
	return Extract(doc, base), nil
}

// Extract reads metadata from a parsed page. Relative image and icon
// references are resolved against pageURL.
func Extract(doc *html.Node, pageURL string) Metadata {
	var (
		m         Metadata
		titleTag  string
		metaDesc  string
		ogTitle   string
		ogDesc    string
		ogImage   string
		twImage   string
		icon      string
		touchIcon string
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if titleTag == "" {
					titleTag = collapse(textOf(n))
				}
			case "meta":
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				val := strings.TrimSpace(attr(n, "content"))
				switch key {
				case "og:title":
					setOnce(&ogTitle, val)
				case "og:description":
					setOnce(&ogDesc, val)
				case "description":
					setOnce(&metaDesc, val)
				case "og:image", "og:image:url":
					setOnce(&ogImage, val)
				case "twitter:image":
					setOnce(&twImage, val)
				}
			case "link":
				rel := strings.ToLower(attr(n, "rel"))
				href := strings.TrimSpace(attr(n, "href"))
				switch {
				case strings.Contains(rel, "apple-touch-icon"):
					setOnce(&touchIcon, href)
				case strings.Contains(rel, "icon"):
					setOnce(&icon, href)
				}
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	m.Title = firstNonEmpty(ogTitle, titleTag)
	m.Description = firstNonEmpty(ogDesc, metaDesc)
	m.Image = resolveRef(pageURL, firstNonEmpty(ogImage, twImage))
	m.Favicon = resolveRef(pageURL, firstNonEmpty(icon, touchIcon))
	return m
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func setOnce(dst *string, val string) {
	if *dst == "" {
		*dst = val
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveRef(pageURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	return u.String()
}
