package grading

import "testing"

func TestFastCache_HitAndMiss(t *testing.T) {
	c := NewFastCache()
	key := CacheKey{EntityID: "sub-1", ContentHash: ContentHash("hello")}

	if _, ok := c.Get(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Put(key, &FastResult{BandScore: 6.0})
	got, ok := c.Get(key)
	if !ok || got.BandScore != 6.0 {
		t.Fatalf("get = (%v, %v), want cached result", got, ok)
	}

	// Any edit changes the hash and misses.
	edited := CacheKey{EntityID: "sub-1", ContentHash: ContentHash("hello world")}
	if _, ok := c.Get(edited); ok {
		t.Error("edited content must miss")
	}
}

func TestFastCache_ReplacesStaleEntry(t *testing.T) {
	c := NewFastCache()
	old := CacheKey{EntityID: "sub-1", ContentHash: ContentHash("v1")}
	c.Put(old, &FastResult{BandScore: 5.0})

	cur := CacheKey{EntityID: "sub-1", ContentHash: ContentHash("v2")}
	c.Put(cur, &FastResult{BandScore: 6.0})

	if _, ok := c.Get(old); ok {
		t.Error("stale hash for the same entity must be evicted")
	}
	if got, ok := c.Get(cur); !ok || got.BandScore != 6.0 {
		t.Errorf("current entry lost: (%v, %v)", got, ok)
	}
}

func TestContentHash_Deterministic(t *testing.T) {
	if ContentHash("abc") != ContentHash("abc") {
		t.Error("hash not deterministic")
	}
	if ContentHash("abc") == ContentHash("abd") {
		t.Error("distinct content produced identical hashes")
	}
}
