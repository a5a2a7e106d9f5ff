package server

import (
	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/handler"
)

// SetupRouter はルーティングを設定する。
func SetupRouter(engine *gin.Engine, h *handler.Handler) {
	// ヘルスチェック
	engine.GET("/health", h.HandleHealth)

	// API v1
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/sessions", h.HandleCreateSession)
		v1.GET("/sessions/:session", h.HandleGetSession)
		v1.DELETE("/sessions/:session", h.HandleDeleteSession)
		v1.POST("/sessions/:session/connect", h.HandleConnect)
		v1.POST("/sessions/:session/did-authenticate", h.HandleDIDAuthenticate)
		v1.POST("/sessions/:session/cancel", h.HandleCancel)

		v1.GET("/cards", h.HandleListCards)
		v1.POST("/cards", h.HandleAddCard)
		v1.DELETE("/cards", h.HandleRemoveCard)
	}
}
