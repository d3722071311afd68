// Package rss defines the in-memory feed-with-items structure shared between
// the ingestion layer and the article cache, plus the identity and
// normalization helpers that keep cached items stable across re-fetches.
package rss

import "time"

// Feed is a single subscribed source and its ordered items.
// Item order is feed-defined, typically newest first.
type Feed struct {
	URL         string
	Title       string
	Link        string
	LastFetched time.Time
	Items       []Item
}

// Item is one article belonging to exactly one feed.
type Item struct {
	// GUID is the feed-supplied globally identifying string; may be empty.
	GUID    string
	Title   string
	Link    string
	Author  string
	PubDate string // raw timestamp string as found in the feed
	// Published is the normalized publication time. Zero means the raw
	// pubdate could not be parsed and the caller should pick a fallback.
	Published     time.Time
	Content       string
	Rendered      string // plain-text rendering of Content
	EnclosureURL  string
	EnclosureType string
	Unread        bool

	// FeedURL and Key form the identity handle used to address the stored
	// row, e.g. when flipping read state on a search result.
	FeedURL string
	Key     string
}

// UnreadCount returns the number of unread items in the feed.
func (f *Feed) UnreadCount() int {
	n := 0
	for i := range f.Items {
		if f.Items[i].Unread {
			n++
		}
	}
	return n
}
