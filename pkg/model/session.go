// Package model はジャーナルに記録するセッション・カードのレコード型を定義する。
package model

// Stage はEAC認証セッションのジャーナル上の段階を表す定数。
type Stage string

const (
	// StageCreated はセッション生成直後
	StageCreated Stage = "created"
	// StageConnected はカード接続済み
	StageConnected Stage = "connected"
	// StageEAC1Complete はPACE完了・EAC2待ち
	StageEAC1Complete Stage = "eac1_complete"
	// StageAwaitAdditional はEACAdditionalInput待ち
	StageAwaitAdditional Stage = "await_additional"
	// StageSuccess は認証成功
	StageSuccess Stage = "success"
	// StageFailure は認証失敗
	StageFailure Stage = "failure"
	// StageCancelled は利用者による中断
	StageCancelled Stage = "cancelled"
)

// IsFinal は最終段階かどうかを返す。
func (s Stage) IsFinal() bool {
	switch s {
	case StageSuccess, StageFailure, StageCancelled:
		return true
	default:
		return false
	}
}

// SessionRecord はセッションレジストリのジャーナルレコード。
// Valkeyキー: eac:sess:{Token}
// TTL: 30分
type SessionRecord struct {
	Token       string `redis:"token"`        // セッショントークン
	Stage       Stage  `redis:"stage"`        // 現在の段階
	CardKey     string `redis:"card_key"`     // 接続中カードのキー（未接続時は空）
	ResultMinor string `redis:"result_minor"` // 最終結果のminorコード（成功時は空）
	CreatedAt   int64  `redis:"created_at"`   // 生成時刻（Unix秒）
	UpdatedAt   int64  `redis:"updated_at"`   // 更新時刻（Unix秒）
}

// NewSessionRecord は新しいSessionRecordを生成する。
func NewSessionRecord(token string, now int64) *SessionRecord {
	return &SessionRecord{
		Token:     token,
		Stage:     StageCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
