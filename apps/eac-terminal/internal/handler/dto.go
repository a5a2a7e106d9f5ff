package handler

import (
	"time"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/registry"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/trust"
)

// バイト列はすべてbase64（encoding/jsonの既定）で表す。

// ServerCertificate はTCトークン取得時に観測したURLと証明書。
type ServerCertificate struct {
	URL         string `json:"url" binding:"required"`
	Certificate []byte `json:"certificate" binding:"required,min=1"`
}

// CreateSessionRequest は有効化時に観測したチャネル情報。
type CreateSessionRequest struct {
	SkipChecks                bool                `json:"skip_checks,omitempty"`
	SameChannel               bool                `json:"same_channel,omitempty"`
	EIDServerCertificate      []byte              `json:"eid_server_certificate,omitempty"`
	TCTokenURL                string              `json:"tc_token_url,omitempty"`
	TCTokenServerCertificates []ServerCertificate `json:"tc_token_server_certificates,omitempty" binding:"omitempty,dive"`
}

// TrustInputs はチェック入力に変換する。
func (r *CreateSessionRequest) TrustInputs() trust.Inputs {
	in := trust.Inputs{
		SkipChecks:           r.SkipChecks,
		SameChannel:          r.SameChannel,
		EIDServerCertificate: r.EIDServerCertificate,
		TCTokenURL:           r.TCTokenURL,
	}
	if r.TCTokenServerCertificates != nil {
		in.TCTokenServerCertificates = make([]trust.ServerCertificate, 0, len(r.TCTokenServerCertificates))
		for _, c := range r.TCTokenServerCertificates {
			in.TCTokenServerCertificates = append(in.TCTokenServerCertificates, trust.ServerCertificate{
				URL:         c.URL,
				Certificate: c.Certificate,
			})
		}
	}
	return in
}

// SessionResponse はセッション情報。
type SessionResponse struct {
	Session   string        `json:"session"`
	CreatedAt time.Time     `json:"created_at"`
	State     string        `json:"state,omitempty"`
	Card      *CardResponse `json:"card,omitempty"`
}

// ConnectRequest はセッションへのカード接続要求。
type ConnectRequest struct {
	ContextHandle []byte `json:"context_handle" binding:"required"`
	IFDName       string `json:"ifd_name" binding:"required"`
	SlotIndex     int    `json:"slot_index" binding:"min=0"`
	SlotHandle    []byte `json:"slot_handle" binding:"required"`
}

// AddCardRequest は認識済みカードの登録要求。
type AddCardRequest struct {
	ContextHandle []byte `json:"context_handle" binding:"required"`
	IFDName       string `json:"ifd_name" binding:"required"`
	SlotIndex     int    `json:"slot_index" binding:"min=0"`
	CardType      string `json:"card_type" binding:"required"`
}

// RemoveCardRequest はカードの削除要求。SlotIndexが無い場合はリーダー単位で削除する。
type RemoveCardRequest struct {
	ContextHandle []byte `json:"context_handle" binding:"required"`
	IFDName       string `json:"ifd_name" binding:"required"`
	SlotIndex     *int   `json:"slot_index,omitempty"`
}

// CardResponse はカードエントリ。
type CardResponse struct {
	ContextHandle []byte    `json:"context_handle"`
	IFDName       string    `json:"ifd_name"`
	SlotIndex     int       `json:"slot_index"`
	CardType      string    `json:"card_type"`
	AddedAt       time.Time `json:"added_at"`
}

// RemoveCardResponse は削除件数。
type RemoveCardResponse struct {
	Removed int `json:"removed"`
}

// HealthResponse はヘルスチェック応答。
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func newCardResponse(c *registry.CardEntry) *CardResponse {
	if c == nil {
		return nil
	}
	return &CardResponse{
		ContextHandle: c.Context,
		IFDName:       c.IFDName,
		SlotIndex:     c.SlotIndex,
		CardType:      c.CardType,
		AddedAt:       c.AddedAt,
	}
}
