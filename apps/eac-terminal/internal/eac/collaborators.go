package eac

import (
	"context"
	"fmt"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/dyncontext"
)

// 動的コンテキストのキー
const (
	KeyEACData                = "eac.data"                    // *EACData
	KeyTrustInputs            = "eac.trust_inputs"            // trust.Inputs
	KeyConnectionHandle       = "eac.connection_handle"       // []byte
	KeyPACEResult             = "eac.pace_result"             // Promise[error]
	KeySchemaValidator        = "eac.schema_validator"        // Promise[SchemaValidator]
	KeyProcessingCancellation = "eac.processing_cancellation" // Promise[struct{}]
	KeyActivationCancel       = "eac.activation_cancel"       // context.CancelFunc
	KeyAuthenticationDone     = "eac.authentication_done"     // bool
	KeyAuthenticationFailed   = "eac.authentication_failed"   // bool
)

// ConsentStatus は対話処理の終了状態。
type ConsentStatus int

// 対話処理の終了状態
const (
	ConsentOK ConsentStatus = iota
	ConsentCancelled
	ConsentInterrupted
)

// String は状態名を返す。
func (s ConsentStatus) String() string {
	switch s {
	case ConsentOK:
		return "OK"
	case ConsentCancelled:
		return "CANCELLED"
	case ConsentInterrupted:
		return "INTERRUPTED"
	default:
		return fmt.Sprintf("ConsentStatus(%d)", int(s))
	}
}

// ConsentStep は対話ステップ。
type ConsentStep string

// 対話ステップ
const (
	StepCVC        ConsentStep = "CVC"        // 証明書記述の提示
	StepCHAT       ConsentStep = "CHAT"       // アクセス権の選択
	StepPIN        ConsentStep = "PIN"        // PIN入力とPACE
	StepCAN        ConsentStep = "CAN"        // CAN入力とPACE
	StepProcessing ConsentStep = "PROCESSING" // 処理中表示
)

// ConsentRequest は対話処理への入力。
type ConsentRequest struct {
	Steps      []ConsentStep
	Data       *EACData
	SlotHandle []byte

	dyn *dyncontext.Context
}

// NewConsentRequest は試行の動的コンテキストに結び付いたConsentRequestを生成する。
func NewConsentRequest(dyn *dyncontext.Context, steps []ConsentStep, data *EACData, slotHandle []byte) ConsentRequest {
	return ConsentRequest{Steps: steps, Data: data, SlotHandle: slotHandle, dyn: dyn}
}

// CompletePACE はPACE出力を記録し、PACE結果を成功として受け渡す。
func (r ConsentRequest) CompletePACE(out PACEOutput) error {
	r.Data.SetPACEOutput(out)
	return r.pacePromise().Deliver(nil)
}

// FailPACE はPACE失敗を受け渡す。errがnilの場合はユーザー取消として扱う。
func (r ConsentRequest) FailPACE(err error) error {
	if err == nil {
		err = NewError(KindUserCancelled, "PACE cancelled by the user", nil)
	}
	return r.pacePromise().Deliver(err)
}

// Context は試行スコープの動的コンテキストを返す。
func (r ConsentRequest) Context() *dyncontext.Context {
	return r.dyn
}

func (r ConsentRequest) pacePromise() *dyncontext.Promise[error] {
	return dyncontext.MustPromise[error](r.dyn, KeyPACEResult)
}

// UserConsentRunner は対話ステップ列を実行する外部協調者。
// 利用者の選択値（選択CHAT、PACE結果）は動的コンテキスト経由で受け渡す。
// ctxの終了時はConsentInterruptedで戻ること。
type UserConsentRunner interface {
	Run(ctx context.Context, req ConsentRequest) ConsentStatus
}

// SchemaValidator はEAC2系入力の構造を検証する。
// 構造不正はfalse、検証器自体の失敗はerrorで返す。
type SchemaValidator interface {
	Validate(msg any) (bool, error)
}
