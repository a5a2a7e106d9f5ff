// Package apperr は共通エラー定義を提供する。
package apperr

import "errors"

// セッション関連エラー
var (
	// ErrSessionNotFound はセッションが見つからない場合のエラー
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists は同一トークンのセッションが既に存在する場合のエラー
	ErrSessionAlreadyExists = errors.New("session already exists")
	// ErrTokenSpaceExhausted はセッショントークンの再生成回数が上限に達した場合のエラー
	ErrTokenSpaceExhausted = errors.New("session token generation exhausted")
)

// カード関連エラー
var (
	// ErrCardNotFound はカードエントリが見つからない場合のエラー
	ErrCardNotFound = errors.New("card entry not found")
	// ErrDuplicateCardEntry は同一 (context, terminal, slot) のカードエントリが既に存在する場合のエラー
	ErrDuplicateCardEntry = errors.New("duplicate card entry")
	// ErrNoCardConnected はセッションにカードが接続されていない場合のエラー
	ErrNoCardConnected = errors.New("no card connected")
)

// インフラ関連エラー
var (
	// ErrValkeyConnection はValkey接続エラー
	ErrValkeyConnection = errors.New("valkey connection error")
	// ErrValkeyCommand はValkeyコマンド実行エラー
	ErrValkeyCommand = errors.New("valkey command error")
	// ErrIFDGateway はIFD Gateway APIエラー
	ErrIFDGateway = errors.New("IFD gateway error")
)

// バリデーション関連エラー
var (
	// ErrInvalidRequest は不正なリクエストエラー
	ErrInvalidRequest = errors.New("invalid request")
)
