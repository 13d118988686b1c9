// Package linkmeta derives preview metadata for saved links: URL
// normalization, a locally computed fallback, and a best-effort page fetch.
package linkmeta

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"dario.cat/mergo"

	"github.com/starford/workbench/internal/apperr"
)

// Metadata is the preview information shown for a link.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Favicon     string `json:"favicon"`
}

// Fetcher retrieves metadata for a normalized URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Metadata, error)
}

// NormalizeURL trims raw, prefixes https:// when no http(s) scheme is
// present, and requires a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("linkmeta: empty url: %w", apperr.ErrInvalidURL)
	}
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("linkmeta: parse %q: %w", raw, apperr.ErrInvalidURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("linkmeta: unsupported scheme %q: %w", u.Scheme, apperr.ErrInvalidURL)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Hostname(), " \t") {
		return "", fmt.Errorf("linkmeta: missing host in %q: %w", raw, apperr.ErrInvalidURL)
	}
	return u.String(), nil
}

// Domain returns the host of rawURL without a leading "www.".
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// FaviconURL returns the generated favicon address for domain.
func FaviconURL(domain string) string {
	return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(domain) + "&sz=64"
}

// Fallback is the metadata used when nothing can be fetched.
func Fallback(rawURL string) Metadata {
	d := Domain(rawURL)
	return Metadata{Title: d, Favicon: FaviconURL(d)}
}

// Resolve fetches metadata for rawURL and fills every empty field from the
// fallback. The returned metadata is always usable; a non-nil error only
// reports why the fallback was used.
func Resolve(ctx context.Context, f Fetcher, rawURL string) (Metadata, error) {
	fb := Fallback(rawURL)
	if f == nil {
		return fb, nil
	}
	m, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return fb, err
	}
	if err := mergo.Merge(&m, fb); err != nil {
		return fb, fmt.Errorf("linkmeta: merge fallback: %w", err)
	}
	return m, nil
}
