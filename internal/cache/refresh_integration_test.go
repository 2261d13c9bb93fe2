//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/biblio/biblio/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	cache, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})

	if err := testutil.FlushRedis(ctx, cache.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, cache
}

func TestIntegrationRefreshToken_SingleUse(t *testing.T) {
	ctx, cache := newCacheTestEnv(t)

	token := testutil.UniqueID("token")
	if err := cache.StoreRefreshToken(ctx, token, "user-1", time.Minute); err != nil {
		t.Fatalf("StoreRefreshToken failed: %v", err)
	}

	userID, err := cache.ConsumeRefreshToken(ctx, token)
	if err != nil {
		t.Fatalf("ConsumeRefreshToken failed: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("unexpected user ID: %q", userID)
	}

	// Second consume must come back empty.
	userID, err = cache.ConsumeRefreshToken(ctx, token)
	if err != nil {
		t.Fatalf("second ConsumeRefreshToken failed: %v", err)
	}
	if userID != "" {
		t.Errorf("expected empty user ID on reuse, got %q", userID)
	}
}

func TestIntegrationRefreshToken_UnknownToken(t *testing.T) {
	ctx, cache := newCacheTestEnv(t)

	userID, err := cache.ConsumeRefreshToken(ctx, "never-issued")
	if err != nil {
		t.Fatalf("ConsumeRefreshToken failed: %v", err)
	}
	if userID != "" {
		t.Errorf("expected empty user ID, got %q", userID)
	}
}

func TestIntegrationRefreshToken_Revoke(t *testing.T) {
	ctx, cache := newCacheTestEnv(t)

	token := testutil.UniqueID("token")
	if err := cache.StoreRefreshToken(ctx, token, "user-1", time.Minute); err != nil {
		t.Fatalf("StoreRefreshToken failed: %v", err)
	}
	if err := cache.RevokeRefreshToken(ctx, token); err != nil {
		t.Fatalf("RevokeRefreshToken failed: %v", err)
	}

	userID, err := cache.ConsumeRefreshToken(ctx, token)
	if err != nil {
		t.Fatalf("ConsumeRefreshToken failed: %v", err)
	}
	if userID != "" {
		t.Errorf("expected empty user ID after revoke, got %q", userID)
	}
}

func TestIntegrationAuthRateLimit_Burst(t *testing.T) {
	ctx, cache := newCacheTestEnv(t)

	ip := "203.0.113.7"
	const burst = 3

	for i := 0; i < burst; i++ {
		result, err := cache.CheckAuthRateLimit(ctx, ip, 1, burst)
		if err != nil {
			t.Fatalf("CheckAuthRateLimit failed: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed within the burst", i+1)
		}
	}

	result, err := cache.CheckAuthRateLimit(ctx, ip, 1, burst)
	if err != nil {
		t.Fatalf("CheckAuthRateLimit failed: %v", err)
	}
	if result.Allowed {
		t.Error("request over the burst should be rejected")
	}
	if result.RetryAfter <= 0 {
		t.Error("expected a positive retry-after")
	}
}
