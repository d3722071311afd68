package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"credenza/internal/logging"
)

// CleanOldArticles enforces the "keep articles for N days" policy across all
// feeds. With a zero window it does nothing. Returns the number of deleted
// items.
func (c *Cache) CleanOldArticles(ctx context.Context) (int64, error) {
	if c.opts.KeepDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -c.opts.KeepDays)

	var deleted int64
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		q := "DELETE FROM items WHERE pubdate < ?"
		if c.opts.PreserveUnread {
			q += " AND unread = 0"
		}
		res, err := tx.ExecContext(ctx, q, cutoff)
		if err != nil {
			return fmt.Errorf("delete old items: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logging.Info("old articles cleaned", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// DeleteItemsOlderThan removes items of one feed published strictly before
// cutoff, honoring the preserve-unread option. Returns the number of deleted
// items.
func (c *Cache) DeleteItemsOlderThan(ctx context.Context, feedURL string, cutoff time.Time) (int64, error) {
	var deleted int64
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		n, err := deleteOlderThanTx(ctx, tx, feedURL, cutoff, c.opts.PreserveUnread)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	return deleted, err
}

// CleanupCache prunes feeds whose URL is not in the surviving subscription
// list; their items go with them. This is the shutdown maintenance pass. An
// empty survivor set removes every stored feed.
func (c *Cache) CleanupCache(ctx context.Context, surviving []string) error {
	keep := make(map[string]struct{}, len(surviving))
	args := make([]any, 0, len(surviving))
	for _, u := range surviving {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := keep[u]; dup {
			continue
		}
		keep[u] = struct{}{}
		args = append(args, u)
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		q := "DELETE FROM feeds"
		if len(args) > 0 {
			q += " WHERE url NOT IN (?" + strings.Repeat(", ?", len(args)-1) + ")"
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("cleanup feeds: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			logging.Info("unsubscribed feeds pruned", "feeds", n)
		}
		return nil
	})
}
