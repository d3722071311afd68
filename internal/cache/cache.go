// Package cache is the persistent article store. It owns the on-disk SQLite
// schema (feeds and their items), merges re-fetched feeds against stored
// state without clobbering user-set read flags, reconstructs feeds for
// display, answers full-text lookups and enforces retention policy.
//
// The cache is the sole owner of its database file. All mutating operations
// run inside a single transaction serialized by an internal mutex; readers
// see either the pre- or post-transaction state, never a partially merged
// feed.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"credenza/internal/logging"
	"credenza/internal/rss"
)

var (
	// ErrFeedNotFound is returned when a feed URL has no row in the store.
	ErrFeedNotFound = errors.New("feed not found")
	// ErrItemNotFound is returned when an identity handle (feed URL plus
	// item key) resolves to no stored item.
	ErrItemNotFound = errors.New("item not found")
)

// Options carries the retention policy handed to Open. Passing it explicitly
// keeps cleanup a function of (items, cutoff) instead of process-wide state.
type Options struct {
	// KeepDays is the "keep articles for N days" window. 0 disables
	// age-based deletion entirely.
	KeepDays int
	// PreserveUnread exempts unread items from age-based deletion.
	PreserveUnread bool
}

// Cache is the SQLite-backed store. Safe for concurrent use; writers are
// serialized through an internal mutex, readers go straight to the pool.
type Cache struct {
	db   *sql.DB
	opts Options
	mu   sync.Mutex
}

// Open opens or creates the store at path and ensures the schema exists.
// Schema creation is idempotent; opening an already-initialized store is a
// no-op. The special path ":memory:" opens a private in-memory database.
func Open(path string, opts Options) (*Cache, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)", path)
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(ON)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	// One connection keeps SQLite happy with a single local writer and
	// makes in-memory databases behave.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL on %s: %w", path, err)
		}
	}

	c := &Cache{db: db, opts: opts}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema in %s: %w", path, err)
	}
	logging.Debug("cache opened", "path", path, "keep_days", opts.KeepDays)
	return c, nil
}

func (c *Cache) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS feeds (
            url TEXT PRIMARY KEY,
            title TEXT NOT NULL DEFAULT '',
            link TEXT NOT NULL DEFAULT '',
            last_fetched TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            feed_url TEXT NOT NULL REFERENCES feeds(url) ON DELETE CASCADE,
            item_key TEXT NOT NULL,
            title TEXT NOT NULL DEFAULT '',
            link TEXT NOT NULL DEFAULT '',
            author TEXT NOT NULL DEFAULT '',
            pubdate TIMESTAMP NOT NULL,
            content TEXT NOT NULL DEFAULT '',
            rendered TEXT NOT NULL DEFAULT '',
            enclosure_url TEXT NOT NULL DEFAULT '',
            enclosure_type TEXT NOT NULL DEFAULT '',
            unread INTEGER NOT NULL DEFAULT 1,
            UNIQUE(feed_url, item_key)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_items_feed ON items(feed_url)`,
		`CREATE INDEX IF NOT EXISTS idx_items_pubdate ON items(pubdate DESC)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// withTx runs fn inside a serialized writer transaction. fn sees a started
// transaction; a nil return commits, anything else rolls back so the prior
// consistent state stays visible.
func (c *Cache) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const itemColumns = "feed_url, item_key, title, link, author, pubdate, content, rendered, enclosure_url, enclosure_type, unread"

// scanItems drains rows produced by a SELECT over itemColumns.
func scanItems(rows *sql.Rows) ([]rss.Item, error) {
	var items []rss.Item
	for rows.Next() {
		var it rss.Item
		var unread int
		err := rows.Scan(
			&it.FeedURL,
			&it.Key,
			&it.Title,
			&it.Link,
			&it.Author,
			&it.Published,
			&it.Content,
			&it.Rendered,
			&it.EnclosureURL,
			&it.EnclosureType,
			&unread,
		)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Unread = unread != 0
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// normalizePubdate picks the stored publication time for an item: the
// already-normalized value when present, else the raw pubdate string run
// through the W3C parser, else the fallback. Parse failures degrade to the
// fallback instead of aborting the merge. The second return reports
// whether the time came from the item itself rather than the fallback;
// merges use it to avoid rewriting a stored pubdate with a fresh fallback
// on every refetch.
func normalizePubdate(it *rss.Item, fallback time.Time) (time.Time, bool) {
	if !it.Published.IsZero() {
		return it.Published.UTC(), true
	}
	if strings.TrimSpace(it.PubDate) != "" {
		if t, err := rss.ParseW3CDTF(it.PubDate); err == nil {
			return t.UTC(), true
		}
		logging.Debug("unparseable pubdate, using fallback", "pubdate", it.PubDate, "link", it.Link)
	}
	return fallback.UTC(), false
}
