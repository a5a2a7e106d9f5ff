package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setRequiredEnv は必須環境変数をすべて設定する
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_PASS", "secret")
	t.Setenv("IFD_GATEWAY_URL", "http://ifd-gateway:8081")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("IFD_EXTENDED_LENGTH", "true")
	t.Setenv("EAC_ALLOW_SKIP_CHECKS", "true")
	t.Setenv("EAC_ATTEMPT_TIMEOUT", "45s")
	t.Setenv("SESSION_TOKEN_MAX_ATTEMPTS", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_MASK_HANDLES", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.IFDGatewayURL != "http://ifd-gateway:8081" {
		t.Errorf("IFDGatewayURL = %q", cfg.IFDGatewayURL)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":9090")
	}
	if !cfg.ExtendedLength {
		t.Error("ExtendedLength = false, want true")
	}
	if !cfg.AllowSkipChecks {
		t.Error("AllowSkipChecks = false, want true")
	}
	if cfg.AttemptTimeout != 45*time.Second {
		t.Errorf("AttemptTimeout = %v, want 45s", cfg.AttemptTimeout)
	}
	if cfg.SessionTokenMaxAttempts != 3 {
		t.Errorf("SessionTokenMaxAttempts = %d, want 3", cfg.SessionTokenMaxAttempts)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want DEBUG", cfg.SlogLevel())
	}
	if cfg.LogMaskHandles {
		t.Error("LogMaskHandles = true, want false")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":8080")
	}
	if cfg.AllowSkipChecks {
		t.Error("AllowSkipChecks should default to false")
	}
	if cfg.ExtendedLength {
		t.Error("ExtendedLength should default to false")
	}
	if cfg.AttemptTimeout != 180*time.Second {
		t.Errorf("AttemptTimeout = %v, want 180s", cfg.AttemptTimeout)
	}
	if cfg.SessionTokenMaxAttempts != 8 {
		t.Errorf("SessionTokenMaxAttempts = %d, want 8", cfg.SessionTokenMaxAttempts)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want INFO", cfg.SlogLevel())
	}
	if !cfg.LogMaskHandles {
		t.Error("LogMaskHandles should default to true")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"REDIS_HOST未設定", "REDIS_HOST"},
		{"REDIS_PORT未設定", "REDIS_PORT"},
		{"REDIS_PASS未設定", "REDIS_PASS"},
		{"IFD_GATEWAY_URL未設定", "IFD_GATEWAY_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			os.Unsetenv(tt.missing)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail when %s is missing", tt.missing)
			}
		})
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"URLスキーム不正", "IFD_GATEWAY_URL", "ftp://ifd-gateway"},
		{"ポート範囲外", "REDIS_PORT", "70000"},
		{"ポート数値以外", "REDIS_PORT", "valkey"},
		{"トークン再生成上限0", "SESSION_TOKEN_MAX_ATTEMPTS", "0"},
		{"タイムアウト0", "EAC_ATTEMPT_TIMEOUT", "0s"},
		{"ログレベル不正", "LOG_LEVEL", "TRACE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestValkeyAddr(t *testing.T) {
	cfg := &Config{RedisHost: "valkey", RedisPort: 6380}
	if got := cfg.ValkeyAddr(); got != "valkey:6380" {
		t.Errorf("ValkeyAddr() = %q, want %q", got, "valkey:6380")
	}
	cfg.RedisHost = "::1"
	if got := cfg.ValkeyAddr(); got != "[::1]:6380" {
		t.Errorf("ValkeyAddr() = %q, want %q", got, "[::1]:6380")
	}
}
