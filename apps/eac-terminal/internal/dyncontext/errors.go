package dyncontext

import "errors"

var (
	// ErrAlreadyDelivered は格納済みのPromiseへ再度Deliverした場合のエラー
	ErrAlreadyDelivered = errors.New("promise already delivered")

	// ErrTypeMismatch は格納値の型が要求型と異なる場合のエラー
	ErrTypeMismatch = errors.New("dynamic context value has unexpected type")
)
