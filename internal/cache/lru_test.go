// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestLRUCacheGetAdd(t *testing.T) {
	c := NewLRUCache(4, time.Minute)

	if _, ok := c.Get("tile/1/0/0"); ok {
		t.Error("empty cache reported a hit")
	}

	c.Add("tile/1/0/0", []byte("png-bytes"))
	got, ok := c.Get("tile/1/0/0")
	if !ok {
		t.Fatal("added entry not found")
	}
	if !bytes.Equal(got, []byte("png-bytes")) {
		t.Errorf("value = %q, want %q", got, "png-bytes")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses, want 1 and 1", hits, misses)
	}
}

func TestLRUCacheUpdatesExisting(t *testing.T) {
	c := NewLRUCache(4, time.Minute)
	c.Add("k", []byte("old"))
	c.Add("k", []byte("new"))

	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
	got, _ := c.Get("k")
	if !bytes.Equal(got, []byte("new")) {
		t.Errorf("value = %q, want %q", got, "new")
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2, time.Minute)
	c.Add("a", []byte("1"))
	c.Add("b", []byte("2"))

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Add("c", []byte("3"))

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry missing")
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache(4, 10*time.Millisecond)
	c.Add("k", []byte("v"))

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry reported as a hit")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d after lazy expiry, want 0", c.Len())
	}
}

func TestLRUCacheDefaults(t *testing.T) {
	c := NewLRUCache(0, 0)
	if c.capacity != 1024 {
		t.Errorf("default capacity = %d, want 1024", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("default ttl = %v, want 5m", c.ttl)
	}
}
