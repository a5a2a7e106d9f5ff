package apperr

import "fmt"

// ValidationError はバリデーションエラーを表す。
type ValidationError struct {
	Field   string // エラーが発生したフィールド名
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field=%s, message=%s", e.Field, e.Message)
}

// Unwrap はErrInvalidRequestを返す。
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// GatewayError はIFD Gatewayとの通信エラーを表す。
type GatewayError struct {
	Endpoint   string // 呼び出したエンドポイント
	StatusCode int    // HTTPステータスコード（接続失敗時は0）
	Cause      error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gateway error: endpoint=%s, statusCode=%d, cause=%v",
			e.Endpoint, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("gateway error: endpoint=%s, statusCode=%d", e.Endpoint, e.StatusCode)
}

// Unwrap は根本原因を返す。
func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// NewGatewayError はGatewayErrorを生成する。
func NewGatewayError(endpoint string, statusCode int, cause error) *GatewayError {
	return &GatewayError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// ValkeyError はValkeyとの操作エラーを表す。
type ValkeyError struct {
	Operation string // 操作名（HSET, HGETALL, DEL等）
	Key       string // 操作対象のキー
	Cause     error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *ValkeyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("valkey error: operation=%s, key=%s, cause=%v",
			e.Operation, e.Key, e.Cause)
	}
	return fmt.Sprintf("valkey error: operation=%s, key=%s", e.Operation, e.Key)
}

// Unwrap は根本原因を返す。
// 根本原因が無い場合はErrValkeyCommandを返す。
func (e *ValkeyError) Unwrap() error {
	if e.Cause == nil {
		return ErrValkeyCommand
	}
	return e.Cause
}

// NewValkeyError はValkeyErrorを生成する。
func NewValkeyError(operation, key string, cause error) *ValkeyError {
	return &ValkeyError{
		Operation: operation,
		Key:       key,
		Cause:     cause,
	}
}
