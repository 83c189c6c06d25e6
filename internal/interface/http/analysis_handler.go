package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/internal/application"
	"github.com/marketmapper/marketmapper/internal/infrastructure/session"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
	"github.com/marketmapper/marketmapper/pkg/render"
)

// AnalysisHandler drives the analysis flow: input form, processing screen,
// result rendering, reruns, and report deletion.
type AnalysisHandler struct {
	Analysis *application.AnalysisService
	Reports  *application.ReportService
	Sessions session.Manager
	Logger   *logrus.Logger
}

func NewAnalysisHandler(analysis *application.AnalysisService, reports *application.ReportService, sessions session.Manager, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{Analysis: analysis, Reports: reports, Sessions: sessions, Logger: logger}
}

// Form GET /analysis
func (h *AnalysisHandler) Form(c *gin.Context) {
	render.HTML(c, http.StatusOK, "analysis.tmpl", gin.H{
		"title": "Start Analysis",
		"link":  "analysis",
	})
}

// Loading POST /analysis/loading: shows the processing screen for a fresh
// analysis, which then posts to /result.
func (h *AnalysisHandler) Loading(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("query"))
	if query == "" {
		c.Redirect(http.StatusFound, "/analysis")
		return
	}
	render.HTML(c, http.StatusOK, "loading.tmpl", gin.H{
		"title":   "Neural Processing",
		"link":    "analysis",
		"query":   query,
		"isRerun": "false",
	})
}

// Rerun GET /analysis/rerun: re-displays a historical query without saving a
// new report.
func (h *AnalysisHandler) Rerun(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	render.HTML(c, http.StatusOK, "loading.tmpl", gin.H{
		"title":   "Neural Mapping",
		"link":    "analysis",
		"query":   query,
		"isRerun": "true",
	})
}

// Result POST /result: runs the analysis and renders the outcome. A new
// report is saved only when the analysis succeeded and this is not a rerun;
// a failed provider call therefore never leaves a report behind.
func (h *AnalysisHandler) Result(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	query := strings.TrimSpace(c.PostForm("query"))
	isRerun := c.PostForm("isRerun")

	if query == "" {
		flashAndRedirect(c, h.Sessions, session.FlashError, "Please enter a valid business idea.", "/analysis")
		return
	}

	result, err := h.Analysis.Analyze(c.Request.Context(), query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", user.ID).Error("analysis failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "AI Analysis failed. Please try again.", "/analysis")
		return
	}

	if isRerun != "true" {
		if _, err := h.Reports.Create(c.Request.Context(), user.ID, query); err != nil && h.Logger != nil {
			// The analysis itself succeeded; show it even if saving failed.
			h.Logger.WithError(err).WithField("user_id", user.ID).Error("report save failed")
		}
	}

	render.HTML(c, http.StatusOK, "result.tmpl", gin.H{
		"title": "Analysis Result",
		"link":  "result",
		"query": query,
		"data":  result,
	})
}

// DeleteReport POST /reports/:id/delete: owner-scoped delete. A report id
// belonging to someone else deletes nothing; the user still sees success.
func (h *AnalysisHandler) DeleteReport(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	if _, err := h.Reports.Delete(c.Request.Context(), id, user.ID); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("report_id", id).Error("report delete failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "Could not delete report.", "/dashboard")
		return
	}
	flashAndRedirect(c, h.Sessions, session.FlashSuccess, "Report deleted successfully!", "/dashboard")
}
