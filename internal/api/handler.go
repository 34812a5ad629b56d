// Package api serves the analytics reports over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trading-journal/internal/analytics"
	"trading-journal/internal/reports"
)

// ReportService is the report surface the handlers read from.
type ReportService interface {
	TradeAnalytics(ctx context.Context, f analytics.Filter) (analytics.Report, error)
	CrossAccount(ctx context.Context) (analytics.CrossAccountReport, error)
	PropFirm(ctx context.Context, accountID string) (analytics.PropFirmReport, error)
	Dashboard(ctx context.Context) (analytics.Dashboard, error)
	Mistakes(ctx context.Context) ([]analytics.MistakeStats, error)
	Strategies(ctx context.Context) ([]analytics.StrategyCount, error)
}

// AnalyticsHandler exposes the reports under /api/v1.
type AnalyticsHandler struct {
	Reports  ReportService
	Location *time.Location
}

// Register mounts the routes on r.
func (h *AnalyticsHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")
	v1.GET("/analytics", h.tradeAnalytics)
	v1.GET("/analytics/cross-account", h.crossAccount)
	v1.GET("/accounts/:id/prop-rules", h.propFirm)
	v1.GET("/dashboard", h.dashboard)
	v1.GET("/mistakes", h.mistakes)
	v1.GET("/strategies", h.strategies)
}

func (h *AnalyticsHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AnalyticsHandler) tradeAnalytics(c *gin.Context) {
	f, err := reports.ParseFilter(reports.FilterParams{
		Account:   c.Query("account"),
		AssetType: c.Query("asset_type"),
		Strategy:  c.Query("strategy"),
		From:      c.Query("from"),
		To:        c.Query("to"),
	}, h.Location)
	if err != nil {
		Fail(c, err)
		return
	}

	report, err := h.Reports.TradeAnalytics(c.Request.Context(), f)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, report, nil)
}

func (h *AnalyticsHandler) crossAccount(c *gin.Context) {
	report, err := h.Reports.CrossAccount(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, report, nil)
}

func (h *AnalyticsHandler) propFirm(c *gin.Context) {
	report, err := h.Reports.PropFirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, report, nil)
}

func (h *AnalyticsHandler) dashboard(c *gin.Context) {
	dashboard, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, dashboard, nil)
}

func (h *AnalyticsHandler) mistakes(c *gin.Context) {
	rows, err := h.Reports.Mistakes(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}

func (h *AnalyticsHandler) strategies(c *gin.Context) {
	rows, err := h.Reports.Strategies(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}
