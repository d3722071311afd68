package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"credenza/internal/rss"
)

// SearchForItems looks up items whose title or content contains query,
// case-insensitively. A non-empty feedURL scopes the search to that feed.
// A blank query returns no results. Ordering matches InternalizeFeed.
//
// Returned items carry their identity handle (FeedURL, Key); callers mutate
// read state through MarkItemRead so later searches and internalized feeds
// observe the change.
func (c *Cache) SearchForItems(ctx context.Context, query, feedURL string) ([]rss.Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	pattern := "%" + strings.ToLower(query) + "%"

	q := "SELECT " + itemColumns + " FROM items WHERE (lower(title) LIKE ? OR lower(content) LIKE ?)"
	args := []any{pattern, pattern}
	if feedURL != "" {
		q += " AND feed_url = ?"
		args = append(args, feedURL)
	}
	q += " ORDER BY pubdate DESC, id ASC"

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// MarkItemRead sets the read flag on the item addressed by (feedURL, key).
func (c *Cache) MarkItemRead(ctx context.Context, feedURL, key string, read bool) error {
	unread := 1
	if read {
		unread = 0
	}
	return c.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE items SET unread = ? WHERE feed_url = ? AND item_key = ?",
			unread, feedURL, key)
		if err != nil {
			return fmt.Errorf("mark item %q read=%v: %w", key, read, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s in %s", ErrItemNotFound, key, feedURL)
		}
		return nil
	})
}

// MarkAllRead marks every item of a feed as read; an empty feedURL covers
// the whole store.
func (c *Cache) MarkAllRead(ctx context.Context, feedURL string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		q := "UPDATE items SET unread = 0"
		var args []any
		if feedURL != "" {
			q += " WHERE feed_url = ?"
			args = append(args, feedURL)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("mark all read: %w", err)
		}
		return nil
	})
}
