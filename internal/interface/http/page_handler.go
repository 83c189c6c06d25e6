package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/internal/application"
	"github.com/marketmapper/marketmapper/internal/domain/entity"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
	"github.com/marketmapper/marketmapper/pkg/render"
)

// PageHandler serves the landing page and the report listing views.
type PageHandler struct {
	Reports *application.ReportService
	Logger  *logrus.Logger
}

func NewPageHandler(reports *application.ReportService, logger *logrus.Logger) *PageHandler {
	return &PageHandler{Reports: reports, Logger: logger}
}

// Landing GET /: authenticated users go straight to the dashboard.
func (h *PageHandler) Landing(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	render.HTML(c, http.StatusOK, "landing.tmpl", gin.H{
		"title": "Welcome",
		"link":  "landing",
	})
}

// Dashboard GET /dashboard: own reports plus aggregate stats.
func (h *PageHandler) Dashboard(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	reports, err := h.Reports.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", user.ID).Error("dashboard report listing failed")
		}
		// Degrade to an empty dashboard rather than an error page.
		reports = []*entity.Report{}
	}

	render.HTML(c, http.StatusOK, "home.tmpl", gin.H{
		"title":     "Dashboard",
		"link":      "dashboard",
		"reports":   reports,
		"count":     len(reports),
		"topRegion": h.Reports.TopLocation(reports),
	})
}

// History GET /history: saved reports with optional free-text search.
func (h *PageHandler) History(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	q := c.Query("q")

	reports, err := h.Reports.Search(c.Request.Context(), user.ID, q)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", user.ID).Error("history search failed")
		}
		reports = []*entity.Report{}
	}

	render.HTML(c, http.StatusOK, "history.tmpl", gin.H{
		"title":   "Market History",
		"link":    "history",
		"reports": reports,
		"query":   q,
	})
}
