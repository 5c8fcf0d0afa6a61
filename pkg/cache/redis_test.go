package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "http://localhost:6379", "t:")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("NewRedisCache() error = %v, want ErrInvalidURL", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if !errors.Is(classify(redis.Nil), redis.Nil) || IsRetryable(classify(redis.Nil)) {
		t.Error("redis.Nil is a miss, not a failure")
	}
	if !IsRetryable(classify(io.EOF)) {
		t.Error("EOF should be retryable")
	}
	if IsRetryable(classify(errors.New("WRONGTYPE"))) {
		t.Error("command errors should not be retried")
	}
}

// TestRedisCache runs against a live server named by FAMTREE_TEST_REDIS,
// e.g. redis://localhost:6379/15.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("FAMTREE_TEST_REDIS")
	if url == "" {
		t.Skip("FAMTREE_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "famtree-test:")
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()
	if _, err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "k"); !hit || err != nil || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v; want v, true, nil", data, hit, err)
	}
	if n, err := c.Clear(ctx); err != nil || n != 1 {
		t.Errorf("Clear() = %d, %v; want 1, nil", n, err)
	}
}
