package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 2 * time.Second
	ValkeyCommandTimeout = 500 * time.Millisecond
	ValkeyPoolSize       = 5
	ValkeyMinIdleConns   = 1
)

// IFD Gateway接続設定
const (
	IFDConnectTimeout = 2 * time.Second
	// APDU送受信はカード操作待ちで数秒ブロックしうる
	IFDRequestTimeout = 30 * time.Second
	// PACEは利用者のPIN入力を含む
	IFDEstablishTimeout = 120 * time.Second
)

// Circuit Breaker設定
const (
	CBName             = "ifd-gateway"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// ジャーナル保持期間
const (
	SessionJournalTTL = 30 * time.Minute
)

// HTTPサーバー設定
const (
	HTTPReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout       = 5 * time.Second
)
