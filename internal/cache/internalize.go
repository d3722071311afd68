package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"credenza/internal/rss"
)

// InternalizeFeed reconstructs the feed stored under feedURL. Items come
// back ordered by publication time descending, with equal timestamps kept in
// insertion order. Ignore rules filter the returned slice only; matching
// items stay in storage.
func (c *Cache) InternalizeFeed(ctx context.Context, feedURL string, ign *rss.Ignores) (*rss.Feed, error) {
	f := &rss.Feed{URL: feedURL}
	var lastFetched sql.NullTime
	err := c.db.QueryRowContext(ctx,
		"SELECT title, link, last_fetched FROM feeds WHERE url = ?", feedURL).
		Scan(&f.Title, &f.Link, &lastFetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, feedURL)
	}
	if err != nil {
		return nil, fmt.Errorf("load feed %s: %w", feedURL, err)
	}
	if lastFetched.Valid {
		f.LastFetched = lastFetched.Time
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE feed_url = ? ORDER BY pubdate DESC, id ASC", feedURL)
	if err != nil {
		return nil, fmt.Errorf("load items of %s: %w", feedURL, err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if ign.Matches(&items[i]) {
			continue
		}
		f.Items = append(f.Items, items[i])
	}
	return f, nil
}

// Feeds lists the stored feed rows (no items), ordered by URL.
func (c *Cache) Feeds(ctx context.Context) ([]rss.Feed, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT url, title, link, last_fetched FROM feeds ORDER BY url")
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []rss.Feed
	for rows.Next() {
		var f rss.Feed
		var lastFetched sql.NullTime
		if err := rows.Scan(&f.URL, &f.Title, &f.Link, &lastFetched); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		if lastFetched.Valid {
			f.LastFetched = lastFetched.Time
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}
	return feeds, nil
}

// Counts returns total and unread item counts, scoped to one feed when
// feedURL is non-empty.
func (c *Cache) Counts(ctx context.Context, feedURL string) (total, unread int, err error) {
	q := "SELECT COUNT(*), COALESCE(SUM(unread), 0) FROM items"
	var args []any
	if feedURL != "" {
		q += " WHERE feed_url = ?"
		args = append(args, feedURL)
	}
	if err := c.db.QueryRowContext(ctx, q, args...).Scan(&total, &unread); err != nil {
		return 0, 0, fmt.Errorf("count items: %w", err)
	}
	return total, unread, nil
}
