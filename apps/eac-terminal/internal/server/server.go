// Package server はHTTPサーバーの構成を提供する。
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/config"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/handler"
)

// Server はginエンジンとhttp.Serverをまとめる。
type Server struct {
	engine *gin.Engine
	srv    *http.Server
}

// NewEngine はミドルウェアとルーティングを設定したginエンジンを生成する。
func NewEngine(h *handler.Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(TraceIDMiddleware(), RecoveryMiddleware(), LoggingMiddleware())
	SetupRouter(engine, h)
	return engine
}

// New は新しいServerを生成する。
func New(cfg *config.Config, h *handler.Handler) *Server {
	engine := NewEngine(h)
	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           engine,
			ReadHeaderTimeout: config.HTTPReadHeaderTimeout,
		},
	}
}

// Handler はルーティング済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run はサーバーを起動する。Shutdown後はhttp.ErrServerClosedを返す。
func (s *Server) Run() error {
	return s.srv.ListenAndServe()
}

// Shutdown はサーバーを停止する。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
