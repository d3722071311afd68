// Package list prints cached feeds and articles for the CLI.
package list

import (
	"context"
	"fmt"
	"strings"

	"credenza/internal/cache"
	"credenza/internal/rss"
)

// Feeds prints one line per stored feed with its unread/total counters.
func Feeds(ctx context.Context, c *cache.Cache) error {
	feeds, err := c.Feeds(ctx)
	if err != nil {
		return err
	}
	if len(feeds) == 0 {
		fmt.Println("No feeds in the cache yet. Run 'credenza fetch' first.")
		return nil
	}
	for _, f := range feeds {
		total, unread, err := c.Counts(ctx, f.URL)
		if err != nil {
			return err
		}
		title := f.Title
		if title == "" {
			title = f.URL
		}
		detail := f.URL
		if !f.LastFetched.IsZero() {
			detail += "  (fetched " + f.LastFetched.Local().Format("2006-01-02 15:04") + ")"
		}
		fmt.Printf("(%d/%d) %s\n        %s\n", unread, total, title, detail)
	}
	return nil
}

// Items prints the articles of one feed, applying the ignore rules the same
// way an interactive view would.
func Items(ctx context.Context, c *cache.Cache, feedURL string, ign *rss.Ignores) error {
	f, err := c.InternalizeFeed(ctx, feedURL, ign)
	if err != nil {
		return err
	}
	if len(f.Items) == 0 {
		fmt.Printf("No articles for %s\n", feedURL)
		return nil
	}
	title := f.Title
	if title == "" {
		title = f.URL
	}
	header := fmt.Sprintf("%s (%d unread of %d)", title, f.UnreadCount(), len(f.Items))
	if ign.Len() > 0 {
		total, _, err := c.Counts(ctx, feedURL)
		if err != nil {
			return err
		}
		if hidden := total - len(f.Items); hidden > 0 {
			header += fmt.Sprintf(", %d hidden", hidden)
		}
	}
	fmt.Printf("%s\n\n", header)
	for i := range f.Items {
		printItem(&f.Items[i])
	}
	return nil
}

func printItem(it *rss.Item) {
	marker := " "
	if it.Unread {
		marker = "N"
	}
	fmt.Printf("%s %s  %s\n", marker, it.Published.Format("2006-01-02 15:04"), it.Title)
	if it.Link != "" {
		fmt.Printf("  %s\n", it.Link)
	}
	preview := it.Rendered
	if preview == "" {
		preview = it.Content
	}
	preview = strings.Join(strings.Fields(preview), " ")
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	if preview != "" {
		fmt.Printf("  %s\n", preview)
	}
	fmt.Println(strings.Repeat("-", 72))
}

// SearchResults prints search matches with their read markers.
func SearchResults(items []rss.Item) {
	if len(items) == 0 {
		fmt.Println("No matches.")
		return
	}
	for i := range items {
		printItem(&items[i])
	}
}
