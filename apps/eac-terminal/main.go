// Package main はEAC端末サービスのエントリーポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/config"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/consent"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/handler"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/ifd"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/registry"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/server"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/store"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/logging"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/valkey"
)

func main() {
	// 1. 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	initLogger(cfg)

	slog.Info("starting eac-terminal",
		"listen_addr", cfg.ListenAddr,
		"log_level", cfg.LogLevel,
		"ifd_gateway_url", cfg.IFDGatewayURL,
		"extended_length", cfg.ExtendedLength,
	)
	if cfg.AllowSkipChecks {
		slog.Warn("activation requests may disable TR-03112 3.4.4 checks",
			"event_id", "EAC_SKIP_CHECKS_ALLOWED",
		)
	}

	// 3. Valkey接続（セッションジャーナル）
	valkeyClient, err := valkey.NewClient(context.Background(), valkey.JournalOptions().
		WithAddr(cfg.ValkeyAddr()).
		WithPassword(cfg.RedisPass).
		WithTimeouts(config.ValkeyConnectTimeout, config.ValkeyCommandTimeout, config.ValkeyCommandTimeout).
		WithPool(config.ValkeyPoolSize, config.ValkeyMinIdleConns))
	if err != nil {
		slog.Error("failed to connect to Valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	slog.Info("connected to Valkey", "addr", cfg.ValkeyAddr())

	// 4. 依存オブジェクト生成
	fields := logging.NewCommonFields(logging.NewMasker(cfg.LogMaskHandles))
	journal := store.NewJournal(valkeyClient)
	reg := registry.New(
		registry.WithJournal(journal),
		registry.WithMaxTokenAttempts(cfg.SessionTokenMaxAttempts),
		registry.WithLogFields(fields),
	)
	ifdClient := ifd.NewClient(cfg)

	h := handler.New(reg, eac.Config{
		Dispatcher:      ifdClient,
		Consent:         consent.NewAutoRunner(ifdClient, false),
		ExtendedLength:  cfg.ExtendedLength,
		AllowSkipChecks: cfg.AllowSkipChecks,
		AttemptTimeout:  cfg.AttemptTimeout,
		Fields:          fields,
	}, eac.NewBindingValidator(), journal)

	// 5. サーバー起動
	srv := server.New(cfg, h)

	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// 6. シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

// initLogger はロガーを初期化する。
func initLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts)).With("app", "eac-terminal")
	slog.SetDefault(logger)
}
