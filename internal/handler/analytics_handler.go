package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-issue-api/internal/middleware"
	"github.com/noah-isme/campus-issue-api/internal/models"
	"github.com/noah-isme/campus-issue-api/internal/service"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
	"github.com/noah-isme/campus-issue-api/pkg/response"
)

// AnalyticsHandler exposes dashboard-ready analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	reports   *service.ReportService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, reports *service.ReportService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, reports: reports}
}

// IssuesByStatus godoc
// @Summary Issue counts by latest status
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/issues-by-status [get]
func (h *AnalyticsHandler) IssuesByStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	start := time.Now()
	counts, cacheHit, err := h.analytics.StatusCounts(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, cacheHit, counts)
}

// IssuesByCategory godoc
// @Summary Issue counts by category
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/issues-by-category [get]
func (h *AnalyticsHandler) IssuesByCategory(c *gin.Context) {
	claims := claimsFromContext(c)
	start := time.Now()
	counts, cacheHit, err := h.analytics.CategoryCounts(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, cacheHit, counts)
}

// ResolutionTime godoc
// @Summary Average resolution time in hours
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/resolution-time [get]
func (h *AnalyticsHandler) ResolutionTime(c *gin.Context) {
	claims := claimsFromContext(c)
	start := time.Now()
	result, cacheHit, err := h.analytics.ResolutionTime(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, cacheHit, result)
}

// FacultyPerformance godoc
// @Summary Per-faculty workload and resolution metrics
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/faculty-performance [get]
func (h *AnalyticsHandler) FacultyPerformance(c *gin.Context) {
	claims := claimsFromContext(c)
	start := time.Now()
	result, cacheHit, err := h.analytics.FacultyPerformance(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, cacheHit, result)
}

// Trends godoc
// @Summary Created/resolved trend buckets
// @Tags Analytics
// @Produce json
// @Param period query string false "week, month or year" default(week)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/trends [get]
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	claims := claimsFromContext(c)
	period := models.TrendPeriod(c.DefaultQuery("period", string(models.TrendWeek)))
	start := time.Now()
	points, cacheHit, err := h.analytics.Trends(c.Request.Context(), claims, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, cacheHit, points)
}

// System godoc
// @Summary Instrumentation metrics snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	start := time.Now()
	metrics := h.analytics.SystemMetrics()
	h.respond(c, start, false, metrics)
}

// Export godoc
// @Summary Export analytics as CSV or PDF
// @Tags Analytics
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	file, err := h.reports.Export(c.Request.Context(), claims, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *AnalyticsHandler) respond(c *gin.Context, start time.Time, cacheHit bool, data interface{}) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}
