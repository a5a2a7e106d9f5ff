package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/valkey"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// Valkey接続設定（セッションジャーナル）
	RedisHost string `envconfig:"REDIS_HOST" required:"true"`
	RedisPort int    `envconfig:"REDIS_PORT" required:"true"`
	RedisPass string `envconfig:"REDIS_PASS" required:"true"`

	// IFD Gateway設定
	IFDGatewayURL string `envconfig:"IFD_GATEWAY_URL" required:"true"`
	// 端末が拡張長APDUをサポートするか（プラットフォームからの能力入力）
	ExtendedLength bool `envconfig:"IFD_EXTENDED_LENGTH" default:"false"`

	// HTTP設定
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// EAC設定
	// 検証・試験環境のみ: 有効化リクエストによるTR-03112 3.4.4チェックの無効化を許可する
	AllowSkipChecks         bool          `envconfig:"EAC_ALLOW_SKIP_CHECKS" default:"false"`
	AttemptTimeout          time.Duration `envconfig:"EAC_ATTEMPT_TIMEOUT" default:"180s"`
	SessionTokenMaxAttempts int           `envconfig:"SESSION_TOKEN_MAX_ATTEMPTS" default:"8"`

	// ログ設定
	LogLevel       string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogMaskHandles bool   `envconfig:"LOG_MASK_HANDLES" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return valkey.BuildAddr(c.RedisHost, c.RedisPort)
}

// SlogLevel はLOG_LEVELをslog.Levelに変換する
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	if !strings.HasPrefix(c.IFDGatewayURL, "http://") && !strings.HasPrefix(c.IFDGatewayURL, "https://") {
		return fmt.Errorf("IFD_GATEWAY_URL must start with http:// or https://")
	}
	if c.RedisPort < 1 || c.RedisPort > 65535 {
		return fmt.Errorf("REDIS_PORT must be between 1 and 65535")
	}
	if c.SessionTokenMaxAttempts < 1 {
		return fmt.Errorf("SESSION_TOKEN_MAX_ATTEMPTS must be at least 1")
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("EAC_ATTEMPT_TIMEOUT must be positive")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR")
	}
	return nil
}
