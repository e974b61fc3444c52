package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundtrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("expected %q, got %q", "v", got)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	if _, err := c.Get(context.Background(), "absent"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheSetNX(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	stored, err := c.SetNX(ctx, "k", []byte("first"), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !stored {
		t.Fatal("first SetNX should store")
	}

	stored, err = c.SetNX(ctx, "k", []byte("second"), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if stored {
		t.Error("second SetNX must not overwrite")
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("expected original value, got %q", got)
	}
}
