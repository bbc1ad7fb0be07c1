package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SafeSet stores a value and logs instead of failing the caller.
func SafeSet(ctx context.Context, helper *CacheHelper, key string, value interface{}, ttl time.Duration) {
	if err := helper.Set(ctx, key, value, ttl); err != nil {
		slog.ErrorContext(ctx, "Failed to set cache key",
			"error", err,
			"key", key)
	}
}

// SafeDelete safely deletes cache keys with logging.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeInvalidatePattern safely invalidates a cache pattern with logging.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// InvalidateUserCache drops the lookup keys of a user after a mutation. A
// rename must pass both the previous and the new username, or the entry
// cached under the old name would keep serving the pre-rename record.
func InvalidateUserCache(ctx context.Context, helper *CacheHelper, userID uint, usernames ...string) {
	keys := make([]string, 0, len(usernames)+1)
	keys = append(keys, fmt.Sprintf("id:%d", userID))
	for _, username := range usernames {
		if username != "" {
			keys = append(keys, fmt.Sprintf("username:%s", username))
		}
	}
	SafeDelete(ctx, helper, keys...)
}
