package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raccoongang/edx-extended-api/internal/repositories"
	"github.com/raccoongang/edx-extended-api/internal/services"
	"github.com/raccoongang/edx-extended-api/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// CreateUser provisions a directory account
// @Summary Create user
// @Description Creates a user with profile fields and access flags
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "User data"
// @Success 201 {object} services.UserStatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} map[string]string "Identity conflict status"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating user", "username", req.Username)

	response, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// UpdateUser applies a sparse update to an existing account
// @Summary Update user
// @Description Updates the user addressed by numeric id or username
// @Tags users
// @Accept json
// @Produce json
// @Param identifier path string true "User id or username"
// @Param user body services.UpdateUserRequest true "Fields to update"
// @Success 200 {object} services.UserStatusResponse
// @Failure 404 {object} map[string]string "user_not_found"
// @Failure 409 {object} map[string]string "Conflict status"
// @Router /users/{identifier} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	ref := repositories.ParseUserRef(c.Param("identifier"))

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating user", "identifier", c.Param("identifier"))

	response, err := h.userService.Update(c.Request.Context(), ref, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUser retrieves one account
// @Summary Get user
// @Description Retrieves the user addressed by numeric id or username
// @Tags users
// @Produce json
// @Param identifier path string true "User id or username"
// @Success 200 {object} services.UserListPayload
// @Failure 404 {object} map[string]string "user_not_found"
// @Router /users/{identifier} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	ref := repositories.ParseUserRef(c.Param("identifier"))

	user, err := h.userService.Get(c.Request.Context(), ref)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers lists accounts matching the query filter
// @Summary List users
// @Description Lists users filtered by user_id or username query parameters
// @Tags users
// @Produce json
// @Param user_id query string false "Comma-separated numeric ids"
// @Param username query string false "Comma-separated usernames"
// @Success 200 {array} services.UserListPayload
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	filter := repositories.ResolveUserFilter(c.Request.URL.Query(), false)
	filter.Orgs = GetOrgScope(c)

	users, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeactivateUser retires one account
// @Summary Deactivate user
// @Description Marks the addressed user inactive; repeat calls are no-ops
// @Tags users
// @Produce json
// @Param identifier path string true "User id or username"
// @Success 200 {object} services.DeactivateResult
// @Failure 404 {object} map[string]string "user_not_found"
// @Router /users/{identifier} [delete]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	ref := repositories.ParseUserRef(c.Param("identifier"))

	h.LogRequest(c, "Deactivating user", "identifier", c.Param("identifier"))

	result, err := h.userService.Deactivate(c.Request.Context(), ref)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BulkDeactivateUsers retires every account matched by the query filter
// @Summary Bulk deactivate users
// @Description Deactivates all users matched by user_id or username filters
// @Tags users
// @Produce json
// @Param user_id query string false "Comma-separated numeric ids"
// @Param username query string false "Comma-separated usernames"
// @Success 200 {array} services.DeactivateResult
// @Failure 400 {object} map[string]string "Unfiltered request refused"
// @Router /users [delete]
func (h *UserHandler) BulkDeactivateUsers(c *gin.Context) {
	filter := repositories.ResolveUserFilter(c.Request.URL.Query(), false)

	h.LogRequest(c, "Bulk deactivating users", "ids", len(filter.IDs), "usernames", len(filter.Usernames))

	results, err := h.userService.BulkDeactivate(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
