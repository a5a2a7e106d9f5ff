package ifd

import (
	"errors"
	"fmt"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
)

var (
	// ErrCircuitOpen はCircuit BreakerがOpen状態の場合のエラー
	ErrCircuitOpen = fmt.Errorf("%w: circuit breaker is open", card.ErrTransport)

	// ErrInvalidResponse はIFD Gatewayからのレスポンスが不正な場合のエラー
	ErrInvalidResponse = errors.New("invalid response from IFD gateway")
)

// APIError はIFD GatewayのHTTPエラー。
type APIError struct {
	StatusCode int
	Message    string
	Details    *ProblemDetails
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("IFD gateway error: %d %s - %s", e.StatusCode, e.Details.Title, e.Details.Detail)
	}
	return fmt.Sprintf("IFD gateway error: %d %s", e.StatusCode, e.Message)
}

// Unwrap はcard.ErrTransportとapperr.ErrIFDGatewayを返す。
func (e *APIError) Unwrap() []error {
	return []error{card.ErrTransport, apperr.ErrIFDGateway}
}

// ResultMinor はゲートウェイが返したminorコードを返す。
func (e *APIError) ResultMinor() string {
	if e.Details == nil {
		return ""
	}
	return e.Details.ResultMinor
}

// IsServerError はサーバーエラーかどうかを判定する
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}
