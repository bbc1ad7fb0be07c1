package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/raccoongang/edx-extended-api/internal/cache"
	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &userRepository{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.UserCacheConfig.Prefix),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	// The associated profile is persisted in the same insert batch; callers
	// run this inside WithTransaction so user and profile commit together.
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return r.handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	// The stored username is read before the write so a rename also drops
	// the cache entry keyed by the previous name.
	var prev models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("username").
		Where("id = ?", user.ID).
		Take(&prev).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return r.handleDBError(err, "update user")
	}

	if err := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(user).Error; err != nil {
		return r.handleDBError(err, "update user")
	}

	cache.InvalidateUserCache(ctx, r.cache, user.ID, user.Username, prev.Username)
	return nil
}

func (r *userRepository) GetByRef(ctx context.Context, ref repositories.UserRef) (*models.User, error) {
	cacheKey := userCacheKey(ref)
	var cached models.User
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var user models.User
	query := r.db.WithContext(ctx).Preload("Profile")
	if ref.ID != 0 {
		query = query.Where("id = ?", ref.ID)
	} else {
		query = query.Where("username = ?", ref.Username)
	}
	if err := query.First(&user).Error; err != nil {
		return nil, r.handleDBError(err, "get user")
	}

	cache.SafeSet(ctx, r.cache, cacheKey, &user, cache.UserCacheConfig.TTL)
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error) {
	var users []*models.User

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.User{}).Preload("Profile"), filter)
	if err := query.Find(&users).Error; err != nil {
		return nil, r.handleDBError(err, "list users")
	}

	return orderByFilter(users, filter), nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, r.handleDBError(err, "check username exists")
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, r.handleDBError(err, "check email exists")
	}
	return count > 0, nil
}

func (r *userRepository) DeactivateAll(ctx context.Context, filter repositories.UserFilter) (int64, error) {
	if filter.Empty() {
		return 0, fmt.Errorf("refusing unfiltered deactivation")
	}

	result := r.applyFilter(r.db.WithContext(ctx).Model(&models.User{}), filter).
		Update("is_active", false)
	if result.Error != nil {
		return 0, r.handleDBError(result.Error, "bulk deactivate users")
	}

	cache.SafeInvalidatePattern(ctx, r.cache, "*")
	return result.RowsAffected, nil
}

// applyFilter applies the resolved predicate plus the org scope. Supervisor
// and org predicates live on the profile row.
func (r *userRepository) applyFilter(query *gorm.DB, filter repositories.UserFilter) *gorm.DB {
	switch {
	case len(filter.IDs) > 0:
		query = query.Where("users.id IN ?", filter.IDs)
	case len(filter.Usernames) > 0:
		query = query.Where("users.username IN ?", filter.Usernames)
	case len(filter.Supervisors) > 0:
		query = query.
			Select("users.*").
			Joins("JOIN user_profiles sup_profile ON sup_profile.user_id = users.id").
			Where("sup_profile.supervisor IN ?", filter.Supervisors)
	}
	if len(filter.Orgs) > 0 {
		query = query.
			Select("users.*").
			Joins("JOIN user_profiles org_profile ON org_profile.user_id = users.id").
			Where("org_profile.org IN ?", filter.Orgs)
	}
	return query
}

// orderByFilter reorders results to follow the requested identifier list.
func orderByFilter(users []*models.User, filter repositories.UserFilter) []*models.User {
	switch {
	case len(filter.IDs) > 0:
		byID := make(map[uint]*models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}
		ordered := make([]*models.User, 0, len(users))
		for _, id := range filter.IDs {
			if u, ok := byID[id]; ok {
				ordered = append(ordered, u)
			}
		}
		return ordered
	case len(filter.Usernames) > 0:
		byName := make(map[string]*models.User, len(users))
		for _, u := range users {
			byName[u.Username] = u
		}
		ordered := make([]*models.User, 0, len(users))
		for _, name := range filter.Usernames {
			if u, ok := byName[name]; ok {
				ordered = append(ordered, u)
			}
		}
		return ordered
	}
	return users
}

func userCacheKey(ref repositories.UserRef) string {
	if ref.ID != 0 {
		return fmt.Sprintf("id:%d", ref.ID)
	}
	return fmt.Sprintf("username:%s", ref.Username)
}

func (r *userRepository) handleDBError(err error, operation string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return fmt.Errorf("%s: %w", operation, err)
}
