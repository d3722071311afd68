package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"credenza/internal/logging"
	"credenza/internal/rss"
)

// ExternalizeFeed merges f into the store inside one transaction: the feed
// row is inserted or its mutable attributes updated, then every item is
// upserted by its identity key. New items start unread; existing rows keep
// their stored read flag, and their stored pubdate when the incoming item
// carries no date of its own, while every other field takes the incoming
// value. Externalizing the same feed twice is a fixed point.
//
// When runCleanup is set and the retention window is non-zero, items of this
// feed older than the window are deleted within the same transaction.
//
// Returns the number of newly inserted items.
func (c *Cache) ExternalizeFeed(ctx context.Context, f *rss.Feed, runCleanup bool) (int, error) {
	if f == nil || f.URL == "" {
		return 0, fmt.Errorf("externalize: feed has no URL")
	}

	now := time.Now().UTC()
	lastFetched := f.LastFetched
	if lastFetched.IsZero() {
		lastFetched = now
	}

	var inserted int
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO feeds (url, title, link, last_fetched) VALUES (?, ?, ?, ?)
            ON CONFLICT(url) DO UPDATE SET
                title = excluded.title,
                link = excluded.link,
                last_fetched = excluded.last_fetched`,
			f.URL, f.Title, f.Link, lastFetched)
		if err != nil {
			return fmt.Errorf("upsert feed %s: %w", f.URL, err)
		}

		before, err := countItemsTx(ctx, tx, f.URL)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
            INSERT INTO items (feed_url, item_key, title, link, author, pubdate,
                               content, rendered, enclosure_url, enclosure_type, unread)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
            ON CONFLICT(feed_url, item_key) DO UPDATE SET
                title = excluded.title,
                link = excluded.link,
                author = excluded.author,
                pubdate = CASE WHEN ? THEN excluded.pubdate ELSE pubdate END,
                content = excluded.content,
                rendered = excluded.rendered,
                enclosure_url = excluded.enclosure_url,
                enclosure_type = excluded.enclosure_type`)
		if err != nil {
			return fmt.Errorf("prepare item upsert: %w", err)
		}
		defer stmt.Close()

		for i := range f.Items {
			it := &f.Items[i]
			key := it.Key
			if key == "" {
				key = rss.ItemKey(it)
			}
			pubdate, dated := normalizePubdate(it, now)
			hasDate := 0
			if dated {
				hasDate = 1
			}
			_, err := stmt.ExecContext(ctx,
				f.URL, key, it.Title, it.Link, it.Author, pubdate,
				it.Content, it.Rendered, it.EnclosureURL, it.EnclosureType, hasDate)
			if err != nil {
				return fmt.Errorf("upsert item %q in %s: %w", key, f.URL, err)
			}
		}

		after, err := countItemsTx(ctx, tx, f.URL)
		if err != nil {
			return err
		}
		inserted = after - before

		if runCleanup && c.opts.KeepDays > 0 {
			cutoff := now.AddDate(0, 0, -c.opts.KeepDays)
			if _, err := deleteOlderThanTx(ctx, tx, f.URL, cutoff, c.opts.PreserveUnread); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logging.Debug("feed externalized", "url", f.URL, "items", len(f.Items), "new", inserted)
	return inserted, nil
}

func countItemsTx(ctx context.Context, tx *sql.Tx, feedURL string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE feed_url = ?", feedURL).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items of %s: %w", feedURL, err)
	}
	return n, nil
}

// deleteOlderThanTx removes items of one feed with pubdate strictly before
// cutoff. With preserveUnread set, unread items survive regardless of age.
func deleteOlderThanTx(ctx context.Context, tx *sql.Tx, feedURL string, cutoff time.Time, preserveUnread bool) (int64, error) {
	q := "DELETE FROM items WHERE feed_url = ? AND pubdate < ?"
	if preserveUnread {
		q += " AND unread = 0"
	}
	res, err := tx.ExecContext(ctx, q, feedURL, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old items of %s: %w", feedURL, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
