package postgres

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.CourseOverview{},
		&models.LearnerCourseReport{},
		&models.LearnerBadgeReport{},
	))

	return db
}

func seedUser(t *testing.T, repo repositories.UserRepository, username, email, org string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    email,
		IsActive: true,
		Profile: models.UserProfile{
			Name:       username,
			Org:        org,
			Supervisor: "boss",
		},
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserPostgreSQL(db, nil)
	ctx := context.Background()

	user := seedUser(t, repo, "john", "john@example.com", "edX")
	require.NotZero(t, user.ID)
	require.NotZero(t, user.Profile.ID)

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByRef(ctx, repositories.ByID(user.ID))
		require.NoError(t, err)
		assert.Equal(t, "john", got.Username)
		assert.Equal(t, "edX", got.Profile.Org)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := repo.GetByRef(ctx, repositories.ByUsername("john"))
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetByRef(ctx, repositories.ByUsername("ghost"))
		assert.True(t, repositories.IsNotFoundError(err))
	})
}

func TestUserRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserPostgreSQL(db, nil)
	ctx := context.Background()

	seedUser(t, repo, "john", "john@example.com", "edX")

	exists, err := repo.ExistsByUsername(ctx, "john")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_ListFollowsFilterOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserPostgreSQL(db, nil)
	ctx := context.Background()

	first := seedUser(t, repo, "alice", "alice@example.com", "edX")
	second := seedUser(t, repo, "bob", "bob@example.com", "edX")
	third := seedUser(t, repo, "carol", "carol@example.com", "OrgX")

	t.Run("id order preserved", func(t *testing.T) {
		users, err := repo.List(ctx, repositories.UserFilter{IDs: []uint{third.ID, first.ID}})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "carol", users[0].Username)
		assert.Equal(t, "alice", users[1].Username)
	})

	t.Run("username order preserved and missing skipped", func(t *testing.T) {
		users, err := repo.List(ctx, repositories.UserFilter{Usernames: []string{"bob", "ghost", "alice"}})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, second.ID, users[0].ID)
		assert.Equal(t, first.ID, users[1].ID)
	})

	t.Run("supervisor filter joins profile", func(t *testing.T) {
		users, err := repo.List(ctx, repositories.UserFilter{Supervisors: []string{"boss"}})
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})

	t.Run("org scope restricts results", func(t *testing.T) {
		users, err := repo.List(ctx, repositories.UserFilter{Supervisors: []string{"boss"}, Orgs: []string{"OrgX"}})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "carol", users[0].Username)
	})
}

func TestUserRepository_RenameInvalidatesOldUsernameKey(t *testing.T) {
	db := setupTestDB(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewUserPostgreSQL(db, client)
	ctx := context.Background()

	user := seedUser(t, repo, "old", "old@example.com", "edX")

	// Warm both lookup keys.
	_, err := repo.GetByRef(ctx, repositories.ByUsername("old"))
	require.NoError(t, err)
	_, err = repo.GetByRef(ctx, repositories.ByID(user.ID))
	require.NoError(t, err)

	user.Username = "renamed"
	require.NoError(t, repo.Update(ctx, user))

	t.Run("old username no longer resolves", func(t *testing.T) {
		_, err := repo.GetByRef(ctx, repositories.ByUsername("old"))
		assert.True(t, repositories.IsNotFoundError(err))
	})

	t.Run("new username serves the renamed record", func(t *testing.T) {
		got, err := repo.GetByRef(ctx, repositories.ByUsername("renamed"))
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("id lookup serves the renamed record", func(t *testing.T) {
		got, err := repo.GetByRef(ctx, repositories.ByID(user.ID))
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Username)
	})
}

func TestUserRepository_DeactivateAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserPostgreSQL(db, nil)
	ctx := context.Background()

	first := seedUser(t, repo, "alice", "alice@example.com", "edX")
	second := seedUser(t, repo, "bob", "bob@example.com", "edX")
	seedUser(t, repo, "carol", "carol@example.com", "edX")

	t.Run("refuses empty filter", func(t *testing.T) {
		_, err := repo.DeactivateAll(ctx, repositories.UserFilter{})
		assert.Error(t, err)
	})

	t.Run("flips only matched rows", func(t *testing.T) {
		rows, err := repo.DeactivateAll(ctx, repositories.UserFilter{IDs: []uint{first.ID, second.ID}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), rows)

		got, err := repo.GetByRef(ctx, repositories.ByID(first.ID))
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		untouched, err := repo.GetByRef(ctx, repositories.ByUsername("carol"))
		require.NoError(t, err)
		assert.True(t, untouched.IsActive)
	})
}
