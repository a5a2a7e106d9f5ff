package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/handler"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/httputil"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/logging"
)

const traceIDHeader = "X-Trace-ID"

// TraceIDMiddleware はX-Trace-IDヘッダからトレースIDを取得する。無い場合は生成する。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(handler.TraceIDKey, traceID)
		c.Header(traceIDHeader, traceID)
		c.Next()
	}
}

// LoggingMiddleware はリクエストログを出力する。
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		slog.LogAttrs(c.Request.Context(), slog.LevelInfo, "request completed",
			logging.WithEventID("HTTP_REQUEST"),
			logging.WithTraceID(c.GetString(handler.TraceIDKey)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			logging.WithSrcIP(c.ClientIP()),
			logging.WithHTTPStatus(c.Writer.Status()),
			logging.WithLatency(time.Since(start).Milliseconds()),
		)
	}
}

// RecoveryMiddleware はパニックからの復旧を行う。
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					logging.WithEventID("HTTP_PANIC"),
					logging.WithTraceID(c.GetString(handler.TraceIDKey)),
					"error", err,
				)
				httputil.AbortWithError(c, httputil.NewProblemDetail(
					http.StatusInternalServerError,
					"An unexpected error occurred",
				))
			}
		}()
		c.Next()
	}
}
