// Package ingest downloads the configured feeds, normalizes them into the
// shared feed structure and writes them through the article cache. The cache
// never sees raw markup; everything network- and parser-shaped lives here.
package ingest

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"credenza/internal/cache"
	"credenza/internal/config"
	"credenza/internal/logging"
	"credenza/internal/render"
	"credenza/internal/rss"
)

const userAgent = "credenza (+https://example.invalid/credenza)"

// Fetcher downloads and converts feeds.
type Fetcher struct {
	cfg    config.Config
	client *http.Client
	parser *gofeed.Parser
}

// New builds a Fetcher with the timeout and scraping knobs from cfg.
func New(cfg config.Config) *Fetcher {
	timeout := time.Duration(cfg.FetchTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &Fetcher{cfg: cfg, client: client, parser: parser}
}

// FetchAll downloads every configured feed concurrently and externalizes
// each one through c. Individual feed failures are logged and skipped; the
// rest of the run proceeds. Returns the number of newly stored items.
func (f *Fetcher) FetchAll(ctx context.Context, c *cache.Cache, runCleanup bool) (int, error) {
	type result struct {
		feed *rss.Feed
		url  string
		err  error
	}

	var wg sync.WaitGroup
	results := make(chan result, len(f.cfg.Feeds))
	for _, raw := range f.cfg.Feeds {
		feedURL := strings.TrimSpace(raw)
		if feedURL == "" {
			continue
		}
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()
			fd, err := f.FetchFeed(ctx, feedURL)
			results <- result{feed: fd, url: feedURL, err: err}
		}(feedURL)
	}
	go func() { wg.Wait(); close(results) }()

	newItems := 0
	for r := range results {
		if r.err != nil {
			logging.Warn("feed fetch failed", "url", r.url, "error", r.err)
			continue
		}
		n, err := c.ExternalizeFeed(ctx, r.feed, runCleanup)
		if err != nil {
			return newItems, err
		}
		logging.Info("feed updated", "url", r.url, "items", len(r.feed.Items), "new", n)
		newItems += n
	}
	return newItems, nil
}

// FetchFeed downloads and converts a single feed.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) (*rss.Feed, error) {
	gf, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}
	return f.convert(ctx, feedURL, gf), nil
}

// convert maps a parsed gofeed document onto the cache's input structure.
func (f *Fetcher) convert(ctx context.Context, feedURL string, gf *gofeed.Feed) *rss.Feed {
	now := time.Now().UTC()
	out := &rss.Feed{
		URL:         feedURL,
		Title:       gf.Title,
		Link:        gf.Link,
		LastFetched: now,
	}

	max := f.cfg.MaxItemsPerFeed
	for _, it := range gf.Items {
		if it == nil {
			continue
		}
		if max > 0 && len(out.Items) >= max {
			break
		}

		item := rss.Item{
			GUID:    it.GUID,
			Title:   it.Title,
			Link:    it.Link,
			PubDate: firstNonEmpty(it.Published, it.Updated),
			Content: firstNonEmpty(it.Content, it.Description),
		}
		if it.PublishedParsed != nil {
			item.Published = it.PublishedParsed.UTC()
		} else if it.UpdatedParsed != nil {
			item.Published = it.UpdatedParsed.UTC()
		}
		if len(it.Authors) > 0 && it.Authors[0] != nil {
			item.Author = it.Authors[0].Name
		}
		if len(it.Enclosures) > 0 && it.Enclosures[0] != nil {
			item.EnclosureURL = it.Enclosures[0].URL
			item.EnclosureType = it.Enclosures[0].Type
		}

		item.Rendered = render.HTMLToText(item.Content)
		if f.cfg.ScrapeContent {
			if text := f.scrape(ctx, item.Link); text != "" {
				item.Rendered = text
			}
		}

		out.Items = append(out.Items, item)
	}
	return out
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
