package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raccoongang/edx-extended-api/internal/repositories"
	"github.com/raccoongang/edx-extended-api/internal/services"
	"github.com/raccoongang/edx-extended-api/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetReport returns one learner's progress report
// @Summary Get progress report
// @Description Returns course and badge progress for the addressed user
// @Tags progress
// @Produce json
// @Param identifier path string true "User id or username"
// @Success 200 {object} services.ProgressReport
// @Failure 404 {object} map[string]string "user_not_found"
// @Router /user_progress_report/{identifier} [get]
func (h *ProgressHandler) GetReport(c *gin.Context) {
	ref := repositories.ParseUserRef(c.Param("identifier"))

	report, err := h.progressService.Get(c.Request.Context(), ref)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReports returns progress reports for the filtered learners
// @Summary List progress reports
// @Description Returns reports for users matched by user_id, username or supervisor filters
// @Tags progress
// @Produce json
// @Param user_id query string false "Comma-separated numeric ids"
// @Param username query string false "Comma-separated usernames"
// @Param supervisor query string false "Comma-separated supervisor usernames"
// @Success 200 {array} services.ProgressReport
// @Router /user_progress_report [get]
func (h *ProgressHandler) ListReports(c *gin.Context) {
	filter := repositories.ResolveUserFilter(c.Request.URL.Query(), true)
	filter.Orgs = GetOrgScope(c)

	reports, err := h.progressService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ExportReports streams the progress report as a spreadsheet download
// @Summary Export progress reports
// @Description Renders the filtered progress report as an XLSX attachment
// @Tags progress
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param user_id query string false "Comma-separated numeric ids"
// @Param username query string false "Comma-separated usernames"
// @Param supervisor query string false "Comma-separated supervisor usernames"
// @Success 200 {file} binary
// @Router /user_progress_report/export [get]
func (h *ProgressHandler) ExportReports(c *gin.Context) {
	filter := repositories.ResolveUserFilter(c.Request.URL.Query(), true)
	filter.Orgs = GetOrgScope(c)

	h.LogRequest(c, "Exporting progress report")

	data, err := h.progressService.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("user_progress_report_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
