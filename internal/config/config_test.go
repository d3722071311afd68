package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed on missing file: %v", err)
	}
	if cfg.FetchTimeoutSec != 30 || cfg.MaxItemsPerFeed != 100 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.KeepOldArticles != 0 {
		t.Errorf("retention should default to disabled, got %d", cfg.KeepOldArticles)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := Config{
		DatabasePath:    "/tmp/credenza-test.db",
		Feeds:           []string{"http://example.org/rss.xml"},
		KeepOldArticles: 42,
		CleanupOnQuit:   true,
		PreserveUnread:  true,
		FetchTimeoutSec: 10,
		MaxItemsPerFeed: 50,
		Ignore:          []IgnoreEntry{{Scope: "title", Pattern: "spam"}},
	}
	if err := Write(path, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.DatabasePath != want.DatabasePath ||
		got.KeepOldArticles != want.KeepOldArticles ||
		!got.CleanupOnQuit || !got.PreserveUnread ||
		got.FetchTimeoutSec != 10 || got.MaxItemsPerFeed != 50 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Feeds) != 1 || got.Feeds[0] != want.Feeds[0] {
		t.Errorf("feeds mismatch: %v", got.Feeds)
	}
	if len(got.Ignore) != 1 || got.Ignore[0].Pattern != "spam" {
		t.Errorf("ignore rules mismatch: %v", got.Ignore)
	}
}

func TestWritePreservesDatabasePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Write(path, Config{DatabasePath: "/keep/me.db"}); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, Config{Feeds: []string{"http://example.org/a"}}); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.DatabasePath != "/keep/me.db" {
		t.Errorf("database path clobbered: %q", got.DatabasePath)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("CREDENZA_TEST_DIR", "/somewhere")
	if got := ExpandPath("$CREDENZA_TEST_DIR/db"); got != "/somewhere/db" {
		t.Errorf("env expansion failed: %q", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("tilde expansion failed: %q", got)
	}
}
