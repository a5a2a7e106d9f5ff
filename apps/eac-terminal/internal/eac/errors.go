package eac

import (
	"context"
	"errors"
	"fmt"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/trust"
)

// EACステップ関連エラー
var (
	// ErrInvalidTransition は遷移テーブルに無い状態遷移を要求した場合のエラー
	ErrInvalidTransition = errors.New("invalid EAC state transition")
	// ErrNilMessage は検証対象がnilの場合のエラー
	ErrNilMessage = errors.New("nil message")
	// ErrMalformedSecurityInfos はEF.CardAccessが解析できない場合のエラー
	ErrMalformedSecurityInfos = errors.New("malformed SecurityInfos")
	// ErrNoChipAuthenticationInfo はEF.CardAccessにCA情報が無い場合のエラー
	ErrNoChipAuthenticationInfo = errors.New("no ChipAuthenticationInfo in EF.CardAccess")
)

// ErrorKind はステップ境界で結果に変換されるエラー種別。
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMalformedInput
	KindTrustCheckFailed
	KindUnsupportedTerminalRole
	KindCertificateMismatch
	KindAuthorizationExceeded
	KindUserCancelled
	KindInterrupted
	KindTransportFailure
	KindCardRejected
	KindSchemaInvalid
	KindInternal
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                 "Unknown",
	KindMalformedInput:          "MalformedInput",
	KindTrustCheckFailed:        "TrustCheckFailed",
	KindUnsupportedTerminalRole: "UnsupportedTerminalRole",
	KindCertificateMismatch:     "CertificateMismatch",
	KindAuthorizationExceeded:   "AuthorizationExceeded",
	KindUserCancelled:           "UserCancelled",
	KindInterrupted:             "Interrupted",
	KindTransportFailure:        "TransportFailure",
	KindCardRejected:            "CardRejected",
	KindSchemaInvalid:           "SchemaInvalid",
	KindInternal:                "Internal",
}

// String は種別名を返す。
func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// minor は種別に対応するResultMinorを返す。
func (k ErrorKind) minor() string {
	switch k {
	case KindMalformedInput, KindUnsupportedTerminalRole, KindSchemaInvalid:
		return MinorIncorrectParameter
	case KindTrustCheckFailed:
		return MinorPrerequisitesNotSatisfied
	case KindCertificateMismatch:
		return MinorDocumentValidityFailed
	case KindAuthorizationExceeded:
		return MinorSecurityConditionNotMet
	case KindUserCancelled, KindInterrupted:
		return MinorCancellationByUser
	case KindInternal:
		return MinorInternalError
	default:
		return MinorUnknownError
	}
}

// Error はEACステップのエラー。
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error

	// resultMinor は外部（IFD等）から受け取ったminorを保持する場合に設定する
	resultMinor string
}

// NewError は新しいErrorを生成する。
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap は根本原因を返す。
func (e *Error) Unwrap() error {
	return e.Err
}

// Minor は結果に設定するResultMinorを返す。
func (e *Error) Minor() string {
	if e.resultMinor != "" {
		return e.resultMinor
	}
	return e.Kind.minor()
}

// Result はエラーを処理結果に変換する。
func (e *Error) Result() Result {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return Result{Major: MajorError, Minor: e.Minor(), Message: msg}
}

// ErrorFromMinor は外部から受け取ったResultMinorからErrorを生成する。minorは結果にそのまま引き継ぐ。
func ErrorFromMinor(minor, msg string) *Error {
	kind := KindUnknown
	switch minor {
	case MinorCancellationByUser, MinorIFDCancellationByUser:
		kind = KindUserCancelled
	case MinorDispatcherTimeout:
		kind = KindInterrupted
	case MinorIncorrectParameter:
		kind = KindMalformedInput
	case MinorInternalError:
		kind = KindInternal
	case MinorPrerequisitesNotSatisfied:
		kind = KindTrustCheckFailed
	}
	return &Error{Kind: kind, Msg: msg, resultMinor: minor}
}

// Classify は下位パッケージのエラーを種別付きErrorに変換する。
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindInterrupted, Msg: "authentication attempt timed out", Err: err, resultMinor: MinorDispatcherTimeout}
	case errors.Is(err, card.ErrInterrupted), errors.Is(err, context.Canceled):
		return NewError(KindInterrupted, "card communication interrupted", err)
	case errors.Is(err, card.ErrCardRejected):
		return NewError(KindCardRejected, "card rejected command", err)
	case errors.Is(err, card.ErrTransport):
		return NewError(KindTransportFailure, "card transport failed", err)
	case errors.Is(err, card.ErrMalformedResponse):
		return NewError(KindTransportFailure, "malformed card response", err)
	case errors.Is(err, trust.ErrPrerequisitesNotSatisfied):
		return NewError(KindTrustCheckFailed, "TR-03112 3.4.4 check failed", err)
	case errors.Is(err, cvc.ErrUnsupportedTerminalRole):
		return NewError(KindUnsupportedTerminalRole, "unsupported terminal type in terminal certificate", err)
	case errors.Is(err, cvc.ErrCertificateMismatch):
		return NewError(KindCertificateMismatch, "certificate description does not match terminal certificate", err)
	case errors.Is(err, cvc.ErrAuthorizationExceeded):
		return NewError(KindAuthorizationExceeded, "required CHAT exceeds terminal CHAT", err)
	case errors.Is(err, cvc.ErrMalformedCertificate), errors.Is(err, cvc.ErrMalformedCHAT),
		errors.Is(err, cvc.ErrMalformedDescription), errors.Is(err, cvc.ErrEmptyChain),
		errors.Is(err, cvc.ErrChainBroken), errors.Is(err, cvc.ErrUnsupportedAlgorithm),
		errors.Is(err, cvc.ErrInvalidOID):
		return NewError(KindMalformedInput, "invalid protocol data", err)
	case errors.Is(err, ErrMalformedSecurityInfos), errors.Is(err, ErrNoChipAuthenticationInfo):
		return NewError(KindMalformedInput, "invalid EF.CardAccess", err)
	case errors.Is(err, ErrInvalidTransition):
		return NewError(KindMalformedInput, "protocol message not expected in current state", err)
	default:
		return NewError(KindUnknown, "unexpected error", err)
	}
}

// IsCancellation はユーザー取消・中断・タイムアウトに由来するエラーかを返す。
func IsCancellation(err error) bool {
	e := Classify(err)
	if e == nil {
		return false
	}
	if e.Kind == KindUserCancelled || e.Kind == KindInterrupted {
		return true
	}
	switch e.Minor() {
	case MinorCancellationByUser, MinorIFDCancellationByUser, MinorDispatcherTimeout:
		return true
	}
	return false
}
