package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raccoongang/edx-extended-api/internal/events"
	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories/postgres"
	"github.com/raccoongang/edx-extended-api/internal/services"
	"github.com/raccoongang/edx-extended-api/internal/utils"
	"github.com/raccoongang/edx-extended-api/internal/validator"
)

func setupUserRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.UserProfile{}))

	slogLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	service := services.NewUserService(repo, db, slogLogger, validator.New(), events.NewMockEventPublisher(slogLogger))
	handler := NewUserHandler(service, utils.NewSlogLogger(slogLogger))

	router := gin.New()
	users := router.Group("/api/v1/users")
	{
		users.POST("", handler.CreateUser)
		users.GET("", handler.ListUsers)
		users.DELETE("", handler.BulkDeactivateUsers)
		users.GET("/:identifier", handler.GetUser)
		users.PUT("/:identifier", handler.UpdateUser)
		users.PATCH("/:identifier", handler.UpdateUser)
		users.DELETE("/:identifier", handler.DeactivateUser)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newUserBody(username, email string) map[string]any {
	return map[string]any{
		"username":   username,
		"email":      email,
		"first_name": "Test",
		"last_name":  "User",
		"name":       "Test User",
	}
}

func TestUserHandler_CreateUser(t *testing.T) {
	router := setupUserRouter(t)

	t.Run("creates user", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/users", newUserBody("john", "john@example.com"))
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "user_created", body["status"])
		assert.Equal(t, "john", body["username"])
		assert.Equal(t, "Learner", body["platform_role"])
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/users", newUserBody("john", "second@example.com"))
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "username_already_used", decodeBody(t, w)["status"])
	})

	t.Run("validation failure", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/users", map[string]any{"username": "only"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_GetAndList(t *testing.T) {
	router := setupUserRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/users", newUserBody("john", "john@example.com"))
	doJSON(t, router, http.MethodPost, "/api/v1/users", newUserBody("jane", "jane@example.com"))

	t.Run("get by username", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/users/john", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "john", body["username"])
		assert.Equal(t, true, body["is_active"])
		assert.NotNil(t, body["user_id"])
	})

	t.Run("get missing user", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/users/ghost", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "user_not_found", decodeBody(t, w)["status"])
	})

	t.Run("list by username filter", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/users?username=jane,john", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 2)
		assert.Equal(t, "jane", list[0]["username"])
		assert.Equal(t, "john", list[1]["username"])
	})
}

func TestUserHandler_UpdateUser(t *testing.T) {
	router := setupUserRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/users", newUserBody("john", "john@example.com"))

	t.Run("patch single field", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/v1/users/john", map[string]any{
			"first_name": "Johnny",
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "user_updated", body["status"])
		assert.Equal(t, "Johnny", body["first_name"])
		assert.Equal(t, "User", body["last_name"])
	})

	t.Run("update missing user", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/v1/users/ghost", map[string]any{
			"first_name": "Nobody",
		})
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "user_not_found", decodeBody(t, w)["status"])
	})
}

func TestUserHandler_Deactivate(t *testing.T) {
	router := setupUserRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/users", newUserBody("john", "john@example.com"))
	doJSON(t, router, http.MethodPost, "/api/v1/users", newUserBody("jane", "jane@example.com"))

	t.Run("single deactivate then idempotent repeat", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/users/john", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user_deactivated", decodeBody(t, w)["status"])

		w = doJSON(t, router, http.MethodDelete, "/api/v1/users/john", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user_already_inactive", decodeBody(t, w)["status"])
	})

	t.Run("inactive user refuses update", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/v1/users/john", map[string]any{
			"first_name": "Johnny",
		})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "user_inactive", decodeBody(t, w)["status"])
	})

	t.Run("unfiltered bulk request refused", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/users", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "You cannot deactivate all users.", decodeBody(t, w)["detail"])
	})

	t.Run("bulk results in request order", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/users?username=jane,ghost", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var results []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "user_deactivated", results[0]["status"])
		assert.Equal(t, "user_not_found", results[1]["status"])
		assert.Nil(t, results[1]["user_id"])
	})
}
