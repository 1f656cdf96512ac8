package keywords

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	userAgent = "DreamwellKeywordScraper/1.0"
	// maxBody caps how much of a landing page is parsed; everything
	// worth scoring sits near the top of the document.
	maxBody        = 150_000
	defaultTimeout = 10 * time.Second
)

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// Scraper fetches landing pages and extracts keywords from them.
type Scraper struct {
	http *http.Client
}

// NewScraper creates a scraper with a bounded request timeout.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scraper{http: &http.Client{Timeout: timeout}}
}

// NormalizeURL defaults bare hostnames to https.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if schemePattern.MatchString(raw) {
		return raw
	}
	return "https://" + strings.TrimLeft(raw, "/")
}

// FromURL fetches a page and returns its top keywords.
func (s *Scraper) FromURL(ctx context.Context, rawURL string, topN int) ([]Keyword, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NormalizeURL(rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("keywords: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keywords: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keywords: fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("keywords: read %s: %w", rawURL, err)
	}
	return Extract(string(body), topN)
}
