// Package handler はHTTPリクエストハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/registry"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/httputil"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/logging"
)

// TraceIDKey はginコンテキストにTraceIDを格納するキー。
const TraceIDKey = "trace_id"

// Pinger はヘルスチェック対象の依存先。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler はEAC端末APIのハンドラー。
type Handler struct {
	reg       *registry.Registry
	protocol  eac.Config
	validator eac.SchemaValidator
	pinger    Pinger
	fields    *logging.CommonFields
}

// New は新しいHandlerを生成する。
// protocolはセッションごとに生成するProtocolの設定、pingerはnil可。
func New(reg *registry.Registry, protocol eac.Config, validator eac.SchemaValidator, pinger Pinger) *Handler {
	if protocol.Fields == nil {
		protocol.Fields = logging.NewCommonFields(logging.NewMasker(true))
	}
	if validator == nil {
		validator = eac.NewBindingValidator()
	}
	return &Handler{
		reg:       reg,
		protocol:  protocol,
		validator: validator,
		pinger:    pinger,
		fields:    protocol.Fields,
	}
}

// requestContext はトレースIDを載せたリクエストのctxを返す。
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if traceID := c.GetString(TraceIDKey); traceID != "" {
		ctx = logging.ContextWithTraceID(ctx, traceID)
	}
	return ctx
}

// writeProblem はエラーをRFC 7807応答に変換して書き込む。
func (h *Handler) writeProblem(c *gin.Context, eventID string, err error) {
	problem := httputil.ProblemFromError(err)
	level := slog.LevelWarn
	if problem.Status >= 500 {
		level = slog.LevelError
	}
	slog.Log(c.Request.Context(), level, "request failed",
		"trace_id", c.GetString(TraceIDKey),
		"event_id", eventID,
		"http_status", problem.Status,
		"error", err.Error(),
	)
	httputil.WriteError(c, problem)
}
