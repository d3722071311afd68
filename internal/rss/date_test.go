package rss

import (
	"testing"
	"time"
)

func TestParseW3CDTFPartialPrecision(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2006", time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2006-06", time.Date(2006, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2006-06-13", time.Date(2006, 6, 13, 0, 0, 0, 0, time.UTC)},
		{"2006-06-13T11", time.Date(2006, 6, 13, 11, 0, 0, 0, time.UTC)},
		{"2006-06-13T11:45", time.Date(2006, 6, 13, 11, 45, 0, 0, time.UTC)},
		{"2006-06-13T11:45:30", time.Date(2006, 6, 13, 11, 45, 30, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseW3CDTF(c.in)
		if err != nil {
			t.Fatalf("ParseW3CDTF(%q) failed: %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseW3CDTF(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseW3CDTFDegradesInvalidFields(t *testing.T) {
	// A valid year with broken finer fields falls back to the coarser
	// precision instead of failing outright.
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2006-13", time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2006-06-32", time.Date(2006, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2006garbage", time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2006-06-13T25", time.Date(2006, 6, 13, 0, 0, 0, 0, time.UTC)},
		{"2006-06-13T11:61", time.Date(2006, 6, 13, 11, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseW3CDTF(c.in)
		if err != nil {
			t.Fatalf("ParseW3CDTF(%q) failed: %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseW3CDTF(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseW3CDTFOffsets(t *testing.T) {
	// Missing designator means UTC; explicit designators are applied.
	utc, err := ParseW3CDTF("2008-12-30T13:03:15")
	if err != nil {
		t.Fatal(err)
	}
	zulu, err := ParseW3CDTF("2008-12-30T13:03:15Z")
	if err != nil {
		t.Fatal(err)
	}
	if !utc.Equal(zulu) {
		t.Errorf("bare timestamp %v and Z timestamp %v differ", utc, zulu)
	}

	east, err := ParseW3CDTF("2008-12-30T13:03:15+01:00")
	if err != nil {
		t.Fatal(err)
	}
	if want := zulu.Add(-time.Hour); !east.UTC().Equal(want) {
		t.Errorf("+01:00 timestamp = %v, want %v", east.UTC(), want)
	}

	west, err := ParseW3CDTF("2008-12-30T13:03:15-08:00")
	if err != nil {
		t.Fatal(err)
	}
	if want := zulu.Add(8 * time.Hour); !west.UTC().Equal(want) {
		t.Errorf("-08:00 timestamp = %v, want %v", west.UTC(), want)
	}
}

func TestParseW3CDTFRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "foo", "-13-42"} {
		if _, err := ParseW3CDTF(in); err == nil {
			t.Errorf("ParseW3CDTF(%q) succeeded, want error", in)
		}
	}
}

func TestItemKeyPrefersGUID(t *testing.T) {
	it := &Item{GUID: "tag:example.org,2006:entry-1", Title: "A", Link: "http://example.org/a"}
	if got := ItemKey(it); got != "tag:example.org,2006:entry-1" {
		t.Errorf("ItemKey = %q, want the GUID", got)
	}
}

func TestItemKeyFallbackIsStable(t *testing.T) {
	a := &Item{Title: "Hello", Link: "http://example.org/hello", Content: "body"}
	b := &Item{Title: "Hello", Link: "http://example.org/hello", Content: "body"}
	if ItemKey(a) != ItemKey(b) {
		t.Error("identical items produced different keys")
	}

	c := &Item{Title: "Hello", Link: "http://example.org/hello", Content: "other body"}
	if ItemKey(a) == ItemKey(c) {
		t.Error("items with different content produced the same key")
	}

	// Whitespace-only GUIDs fall through to the hash.
	d := &Item{GUID: "   ", Title: "Hello", Link: "http://example.org/hello", Content: "body"}
	if ItemKey(d) != ItemKey(a) {
		t.Error("blank GUID did not fall back to the content hash")
	}
}
