package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"credenza/internal/cache"
	"credenza/internal/config"
)

const testRSS = `<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0">
  <channel>
    <title>Awesome blog</title>
    <link>http://example.org/</link>
    <description>Recent content</description>
    <item>
      <title>Part 1</title>
      <link>http://example.org/articles/1</link>
      <guid>post-2025-08-25</guid>
      <pubDate>Mon, 25 Aug 2025 07:42:16 +0100</pubDate>
      <description>Seasons are &lt;b&gt;gone&lt;/b&gt;</description>
    </item>
    <item>
      <title>Part 2</title>
      <link>http://example.org/articles/2</link>
      <guid>post-2025-08-26</guid>
      <pubDate>Tue, 26 Aug 2025 07:42:16 +0100</pubDate>
      <description>Content 2</description>
      <enclosure url="http://example.org/articles/2.mp3" type="audio/mpeg" length="1"/>
    </item>
  </channel>
</rss>`

func rssServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, testRSS)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAllStoresItems(t *testing.T) {
	ctx := context.Background()
	srv := rssServer(t)

	cfg := config.Default()
	cfg.Feeds = []string{srv.URL + "/rss"}

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), cache.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	n, err := New(cfg).FetchAll(ctx, c, false)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 new items, got %d", n)
	}

	f, err := c.InternalizeFeed(ctx, srv.URL+"/rss", nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Title != "Awesome blog" {
		t.Errorf("feed title = %q", f.Title)
	}
	if len(f.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(f.Items))
	}
	// Newest first.
	if f.Items[0].Key != "post-2025-08-26" {
		t.Errorf("ordering wrong, first item %q", f.Items[0].Key)
	}
	if f.Items[0].EnclosureURL != "http://example.org/articles/2.mp3" {
		t.Errorf("enclosure lost: %+v", f.Items[0])
	}
	// HTML content gets a plain-text rendering.
	if f.Items[1].Rendered != "Seasons are gone" {
		t.Errorf("rendered text = %q", f.Items[1].Rendered)
	}
}

func TestFetchAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	srv := rssServer(t)

	cfg := config.Default()
	cfg.Feeds = []string{srv.URL + "/rss"}

	c, err := cache.Open(":memory:", cache.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	fetcher := New(cfg)
	if _, err := fetcher.FetchAll(ctx, c, false); err != nil {
		t.Fatal(err)
	}
	n, err := fetcher.FetchAll(ctx, c, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("re-fetch stored %d new items, want 0", n)
	}
}

func TestFetchAllSkipsBrokenFeeds(t *testing.T) {
	ctx := context.Background()
	srv := rssServer(t)

	cfg := config.Default()
	cfg.Feeds = []string{srv.URL + "/404", srv.URL + "/rss"}

	c, err := cache.Open(":memory:", cache.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	n, err := New(cfg).FetchAll(ctx, c, false)
	if err != nil {
		t.Fatalf("FetchAll should survive a broken feed: %v", err)
	}
	if n != 2 {
		t.Errorf("healthy feed not ingested, new=%d", n)
	}
}
