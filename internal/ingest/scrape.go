package ingest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	trafilatura "github.com/markusmobius/go-trafilatura"

	"credenza/internal/logging"
)

// scrapeMinLength guards against extracting boilerplate; shorter results are
// discarded in favor of the feed-provided content.
const scrapeMinLength = 100

// scrape fetches the linked page and extracts the main article text. Any
// failure returns "" so the caller can fall back to feed content.
func (f *Fetcher) scrape(ctx context.Context, pageURL string) string {
	if strings.TrimSpace(pageURL) == "" {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil || resp == nil || resp.Body == nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Debug("scrape skipped", "url", pageURL, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return ""
	}

	parsed, _ := neturl.Parse(pageURL)
	res, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{
		OriginalURL:    parsed,
		EnableFallback: true,
		Focus:          trafilatura.Balanced,
	})
	if err != nil || res == nil {
		return ""
	}
	if text := strings.TrimSpace(res.ContentText); len(text) >= scrapeMinLength {
		return text
	}
	return ""
}
