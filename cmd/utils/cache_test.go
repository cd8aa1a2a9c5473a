package utils

import (
	"testing"
	"time"
)

func TestTTLCacheGetSet(t *testing.T) {
	c := NewTTLCache(time.Minute)

	if _, ok := c.Get("skipper"); ok {
		t.Fatalf("empty cache should miss")
	}

	c.Set("skipper", 42)
	v, ok := c.Get("skipper")
	if !ok {
		t.Fatalf("expected hit after Set")
	}
	if v.(int) != 42 {
		t.Fatalf("value = %v, want 42", v)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache(10 * time.Millisecond)
	c.Set("skipper", "profile")

	if _, ok := c.Get("skipper"); !ok {
		t.Fatalf("fresh entry should hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("skipper"); ok {
		t.Fatalf("expired entry should miss")
	}
}

func TestTTLCacheClear(t *testing.T) {
	c := NewTTLCache(time.Minute)
	c.Set("skipper", 1)
	c.Set("crew", 2)

	c.Clear("skipper")

	if _, ok := c.Get("skipper"); ok {
		t.Fatalf("cleared key should miss")
	}
	if _, ok := c.Get("crew"); !ok {
		t.Fatalf("other keys should survive Clear")
	}
}

func TestNewTTLCacheDefaultTTL(t *testing.T) {
	c := NewTTLCache(0)
	if c.ttl != DefaultCacheTTL {
		t.Fatalf("ttl = %v, want %v", c.ttl, DefaultCacheTTL)
	}
}
