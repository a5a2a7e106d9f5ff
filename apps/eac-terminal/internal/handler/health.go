package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealth はGET /health のハンドラー。ジャーナルに到達できない場合は503を返す。
func (h *Handler) HandleHealth(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Sessions: h.reg.SessionCount()}
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			slog.Warn("health check failed",
				"event_id", "HEALTH_ERR",
				"error", err,
			)
			resp.Status = "degraded"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}
