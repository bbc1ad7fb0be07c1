package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) *CacheHelper {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, UserCacheConfig.Prefix)
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper := setupCache(t)
	ctx := context.Background()

	type record struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	if err := helper.Set(ctx, "id:1", record{ID: 1, Name: "john"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got record
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != 1 || got.Name != "john" {
		t.Errorf("Get = %+v, want {1 john}", got)
	}

	if err := helper.Get(ctx, "id:2", &got); err != ErrCacheNotFound {
		t.Errorf("Get missing key err = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper := setupCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", "payload", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := helper.Delete(ctx, "id:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, err := helper.Exists(ctx, "id:1")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("key still present after delete")
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper := setupCache(t)
	ctx := context.Background()

	for _, key := range []string{"id:1", "id:2", "username:john"} {
		if err := helper.Set(ctx, key, "payload", time.Minute); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "id:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	for _, key := range []string{"id:1", "id:2"} {
		exists, err := helper.Exists(ctx, key)
		if err != nil {
			t.Fatalf("Exists %s: %v", key, err)
		}
		if exists {
			t.Errorf("key %s survived pattern invalidation", key)
		}
	}

	exists, err := helper.Exists(ctx, "username:john")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("unrelated key was invalidated")
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, UserCacheConfig.Prefix)
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", "payload", time.Minute); err != nil {
		t.Errorf("Set err = %v, want nil (write skipped)", err)
	}

	var dest string
	if err := helper.Get(ctx, "id:1", &dest); err != ErrCacheNotAvailable {
		t.Errorf("Get err = %v, want ErrCacheNotAvailable", err)
	}

	// Safe wrappers swallow the unavailability.
	SafeSet(ctx, helper, "id:1", "payload", time.Minute)
	SafeInvalidatePattern(ctx, helper, "*")
	InvalidateUserCache(ctx, helper, 1, "john")
}
