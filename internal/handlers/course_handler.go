package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raccoongang/edx-extended-api/internal/services"
	"github.com/raccoongang/edx-extended-api/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// ListCourses lists the course catalog for the configured organizations
// @Summary List courses
// @Description Lists course overviews belonging to the configured organizations
// @Tags courses
// @Produce json
// @Success 200 {array} services.CoursePayload
// @Failure 401 {object} ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context(), GetOrgScope(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}
