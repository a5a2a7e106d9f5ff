package eac

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
)

// DataType はDIDAuthenticateのプロトコルデータ種別（TR-03112 Part 7）
type DataType string

// プロトコルデータ種別
const (
	TypeEAC1Input           DataType = "iso:EAC1InputType"
	TypeEAC1Output          DataType = "iso:EAC1OutputType"
	TypeEAC2Input           DataType = "iso:EAC2InputType"
	TypeEAC2Output          DataType = "iso:EAC2OutputType"
	TypeEACAdditionalInput  DataType = "iso:EACAdditionalInputType"
	TypeEACAdditionalOutput DataType = "iso:EACAdditionalOutputType"
)

// ProtocolEAC はEAC2プロトコルURI
const ProtocolEAC = "urn:oid:1.3.162.15480.3.0.14.2"

// DIDAuthenticate は認証要求エンベロープ。
type DIDAuthenticate struct {
	SlotHandle []byte          `json:"slot_handle,omitempty"`
	DIDName    string          `json:"did_name,omitempty"`
	Protocol   string          `json:"protocol,omitempty"`
	Type       DataType        `json:"type" binding:"required"`
	Data       json.RawMessage `json:"data" binding:"required"`
}

// NewDIDAuthenticate はdataをエンコードした認証要求を生成する。
func NewDIDAuthenticate(slotHandle []byte, typ DataType, data any) (*DIDAuthenticate, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return &DIDAuthenticate{SlotHandle: slotHandle, Protocol: ProtocolEAC, Type: typ, Data: b}, nil
}

// DIDAuthenticateResponse は認証応答エンベロープ。
type DIDAuthenticateResponse struct {
	Result Result   `json:"result"`
	Type   DataType `json:"type,omitempty"`
	Data   any      `json:"data,omitempty"`
}

// EAC1Input はEAC1入力。証明書はリンク証明書から端末証明書まで（順不同）。
type EAC1Input struct {
	Certificates               [][]byte `json:"certificates" binding:"required,min=1,dive,min=1"`
	CertificateDescription     []byte   `json:"certificate_description" binding:"required,min=1"`
	RequiredCHAT               []byte   `json:"required_chat,omitempty"`
	OptionalCHAT               []byte   `json:"optional_chat,omitempty"`
	AuthenticatedAuxiliaryData []byte   `json:"authenticated_auxiliary_data,omitempty"`
	TransactionInfo            string   `json:"transaction_info,omitempty"`
}

// EAC1Output はEAC1出力。
type EAC1Output struct {
	RetryCounter int      `json:"retry_counter,omitempty"`
	CHAT         []byte   `json:"chat"`
	CARs         [][]byte `json:"certification_authority_references"`
	EFCardAccess []byte   `json:"ef_card_access"`
	IDPICC       []byte   `json:"id_picc"`
	Challenge    []byte   `json:"challenge"`
}

// EAC2Input はEAC2入力。Signatureが無い場合は追加入力で受け取る。
type EAC2Input struct {
	Certificates       [][]byte `json:"certificates,omitempty" binding:"omitempty,dive,min=1"`
	EphemeralPublicKey []byte   `json:"ephemeral_public_key" binding:"required,min=1"`
	Signature          []byte   `json:"signature,omitempty"`
}

// EAC2Output はEAC2出力。Challengeは署名待ちの場合のみ設定される。
type EAC2Output struct {
	EFCardSecurity      []byte `json:"ef_card_security,omitempty"`
	AuthenticationToken []byte `json:"authentication_token,omitempty"`
	Nonce               []byte `json:"nonce,omitempty"`
	Challenge           []byte `json:"challenge,omitempty"`
}

// EACAdditionalInput はTA署名の追加入力。
type EACAdditionalInput struct {
	Signature []byte `json:"signature" binding:"required,min=1"`
}

// PasswordID はPACEで使用するパスワード種別（TR-03110）。
type PasswordID uint8

// パスワード種別
const (
	PasswordMRZ PasswordID = 1
	PasswordCAN PasswordID = 2
	PasswordPIN PasswordID = 3
	PasswordPUK PasswordID = 4
)

// String はパスワード種別名を返す。
func (p PasswordID) String() string {
	switch p {
	case PasswordMRZ:
		return "MRZ"
	case PasswordCAN:
		return "CAN"
	case PasswordPIN:
		return "PIN"
	case PasswordPUK:
		return "PUK"
	default:
		return fmt.Sprintf("PasswordID(%d)", uint8(p))
	}
}

// PACEOutput はPACE確立結果。
type PACEOutput struct {
	RetryCounter int
	EFCardAccess []byte
	CurrentCAR   []byte
	PreviousCAR  []byte
	IDPICC       []byte
}

// EACData は認証試行中に共有されるEACセッションデータ。
// SelectedCHATとPACE出力は対話側からも書き込まれるためアクセサ経由でのみ扱う。
type EACData struct {
	Request             *DIDAuthenticate
	Certificates        *cvc.Chain
	TerminalCertificate *cvc.Certificate
	Description         *cvc.Description
	RawDescription      []byte
	TerminalCHAT        *cvc.CHAT
	RequiredCHAT        *cvc.CHAT
	OptionalCHAT        *cvc.CHAT
	AAD                 []byte
	TransactionInfo     string
	PinID               PasswordID

	mu       sync.Mutex
	selected *cvc.CHAT
	pace     *PACEOutput
}

// SelectedCHAT は利用者が承認したCHATを返す。
func (d *EACData) SelectedCHAT() *cvc.CHAT {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected
}

// SetSelectedCHAT は利用者が承認したCHATを設定する。
// 必須CHATの権限を含み、必須・任意CHATの和を超えないこと。
func (d *EACData) SetSelectedCHAT(c *cvc.CHAT) error {
	if c == nil {
		return fmt.Errorf("%w: selected CHAT is nil", cvc.ErrMalformedCHAT)
	}
	ceiling := d.RequiredCHAT
	if d.OptionalCHAT != nil {
		ceiling = ceiling.With(d.OptionalCHAT.Rights()...)
	}
	if err := cvc.VerifyNotExceeding(ceiling, c); err != nil {
		return err
	}
	if err := cvc.VerifyNotExceeding(c, d.RequiredCHAT); err != nil {
		return fmt.Errorf("required access rights deselected: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = c
	return nil
}

// PACEOutput はPACE出力を返す。未確立の場合はnil。
func (d *EACData) PACEOutput() *PACEOutput {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pace
}

// SetPACEOutput はPACE出力を設定する。
func (d *EACData) SetPACEOutput(out PACEOutput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pace = &out
}

// InternalData はEAC1からEAC2へ引き継ぐ試行内部データ。
type InternalData struct {
	SecurityInfos *SecurityInfos
	Chain         *cvc.Chain
	AAD           []byte
	CurrentCAR    cvc.PublicKeyReference
	PreviousCAR   cvc.PublicKeyReference
	IDPICC        []byte
	Challenge     []byte
	EphemeralKey  []byte
	Signature     []byte
}
