package apperr

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		// セッション関連
		{"ErrSessionNotFound", ErrSessionNotFound, "session not found"},
		{"ErrSessionAlreadyExists", ErrSessionAlreadyExists, "session already exists"},
		{"ErrTokenSpaceExhausted", ErrTokenSpaceExhausted, "session token generation exhausted"},
		// カード関連
		{"ErrCardNotFound", ErrCardNotFound, "card entry not found"},
		{"ErrDuplicateCardEntry", ErrDuplicateCardEntry, "duplicate card entry"},
		{"ErrNoCardConnected", ErrNoCardConnected, "no card connected"},
		// インフラ関連
		{"ErrValkeyConnection", ErrValkeyConnection, "valkey connection error"},
		{"ErrValkeyCommand", ErrValkeyCommand, "valkey command error"},
		{"ErrIFDGateway", ErrIFDGateway, "IFD gateway error"},
		// バリデーション関連
		{"ErrInvalidRequest", ErrInvalidRequest, "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrSessionNotFound, ErrSessionAlreadyExists, ErrTokenSpaceExhausted,
		ErrCardNotFound, ErrDuplicateCardEntry, ErrNoCardConnected,
		ErrValkeyConnection, ErrValkeyCommand, ErrIFDGateway,
		ErrInvalidRequest,
	}

	for i, a := range allErrors {
		for j, b := range allErrors {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v and %v should be distinct", a, b)
			}
		}
	}
}
