package rss

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ItemKey computes the deduplication key for an item. The feed-supplied GUID
// wins when present; otherwise the key is a hash over title, link and content
// so that identity-less sources still map back to the same row on re-fetch.
// The result depends only on the item's fields, never on time or process
// state.
func ItemKey(it *Item) string {
	if g := strings.TrimSpace(it.GUID); g != "" {
		return g
	}
	h := sha256.New()
	h.Write([]byte(it.Title))
	h.Write([]byte{0})
	h.Write([]byte(it.Link))
	h.Write([]byte{0})
	h.Write([]byte(it.Content))
	return hex.EncodeToString(h.Sum(nil))
}
