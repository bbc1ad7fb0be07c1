package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/raccoongang/edx-extended-api/internal/config"
	"github.com/raccoongang/edx-extended-api/internal/services"
	"github.com/raccoongang/edx-extended-api/internal/utils"
)

type HandlerManager struct {
	userHandler     *UserHandler
	courseHandler   *CourseHandler
	progressHandler *ProgressHandler
	authMiddleware  *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	siteOrgs []string,
) *HandlerManager {
	return &HandlerManager{
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		courseHandler:   NewCourseHandler(serviceManager.Course(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		authMiddleware:  NewCasdoorAuthMiddleware(casdoorConfig, siteOrgs),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	v1.Use(hm.authMiddleware.RequireOrgAdminMiddleware())
	{
		// User directory routes
		users := v1.Group("/users")
		{
			users.POST("", hm.userHandler.CreateUser)
			users.GET("", hm.userHandler.ListUsers)
			users.DELETE("", hm.userHandler.BulkDeactivateUsers)
			users.GET("/:identifier", hm.userHandler.GetUser)
			users.PUT("/:identifier", hm.userHandler.UpdateUser)
			users.PATCH("/:identifier", hm.userHandler.UpdateUser)
			users.DELETE("/:identifier", hm.userHandler.DeactivateUser)
		}

		// Course catalog routes
		v1.GET("/courses", hm.courseHandler.ListCourses)

		// Progress report routes
		progress := v1.Group("/user_progress_report")
		{
			progress.GET("", hm.progressHandler.ListReports)
			progress.GET("/export", hm.progressHandler.ExportReports)
			progress.GET("/:identifier", hm.progressHandler.GetReport)
		}
	}

	// Legacy creation endpoint kept for existing integrations.
	legacy := router.Group("/api")
	legacy.Use(hm.authMiddleware.AuthMiddleware())
	legacy.Use(hm.authMiddleware.RequireOrgAdminMiddleware())
	{
		legacy.POST("/create_user", hm.userHandler.CreateUser)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "extended-api",
		})
	})
}
