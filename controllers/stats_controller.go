package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/barmor12/cakeshop-backend/services"
)

// StatsController handles HTTP requests for admin reporting.
type StatsController struct {
	statsService services.StatsService
}

func NewStatsController(statsService services.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// Overview handles GET /stats/overview (admin only).
func (sc *StatsController) Overview(ctx *gin.Context) {
	overview, svcErr := sc.statsService.Overview(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, overview)
}

// OrdersPerDay handles GET /stats/orders-per-day (admin only). Accepts
// from/to query params as YYYY-MM-DD; defaults to the last 30 days.
func (sc *StatsController) OrdersPerDay(ctx *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := ctx.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if v := ctx.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
			return
		}
		to = parsed
	}

	days, svcErr := sc.statsService.OrdersPerDay(ctx.Request.Context(), from, to)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"days": days})
}
