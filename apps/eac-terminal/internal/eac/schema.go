package eac

import (
	"log/slog"
	"reflect"

	"github.com/gin-gonic/gin/binding"
)

// BindingValidator はginのbindingタグで入力構造を検証するSchemaValidator。
type BindingValidator struct {
	v binding.StructValidator
}

// NewBindingValidator はginの既定検証器を使うBindingValidatorを生成する。
func NewBindingValidator() *BindingValidator {
	return &BindingValidator{v: binding.Validator}
}

// Validate はSchemaValidatorを実装する。
func (b *BindingValidator) Validate(msg any) (bool, error) {
	if msg == nil {
		return false, ErrNilMessage
	}
	if rv := reflect.ValueOf(msg); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false, ErrNilMessage
	}
	if err := b.v.ValidateStruct(msg); err != nil {
		slog.Debug("入力構造の検証に失敗",
			"event_id", "EAC_SCHEMA_INVALID",
			"type", reflect.TypeOf(msg).String(),
			"error", err,
		)
		return false, nil
	}
	return true, nil
}
