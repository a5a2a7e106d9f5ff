package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestWithTraceID(t *testing.T) {
	attr := WithTraceID("trace-12345")
	if attr.Key != FieldTraceID {
		t.Errorf("Key = %q, want %q", attr.Key, FieldTraceID)
	}
	if attr.Value.String() != "trace-12345" {
		t.Errorf("Value = %q, want %q", attr.Value.String(), "trace-12345")
	}
}

func TestWithEventID(t *testing.T) {
	attr := WithEventID("EAC_PACE_CANCELLED")
	if attr.Key != FieldEventID {
		t.Errorf("Key = %q, want %q", attr.Key, FieldEventID)
	}
	if attr.Value.String() != "EAC_PACE_CANCELLED" {
		t.Errorf("Value = %q, want %q", attr.Value.String(), "EAC_PACE_CANCELLED")
	}
}

func TestWithError(t *testing.T) {
	t.Run("With error", func(t *testing.T) {
		attr := WithError(errors.New("card rejected"))
		if attr.Value.String() != "card rejected" {
			t.Errorf("Value = %q, want %q", attr.Value.String(), "card rejected")
		}
	})

	t.Run("Nil error", func(t *testing.T) {
		attr := WithError(nil)
		if attr.Value.String() != "" {
			t.Errorf("Value = %q, want empty", attr.Value.String())
		}
	})
}

func TestCommonFields(t *testing.T) {
	token := "6f1c2a4e-0b7d-4c1e-9a55-3e2f1d0c9b8a"

	t.Run("masking enabled", func(t *testing.T) {
		cf := NewCommonFields(NewMasker(true))
		attr := cf.WithSession(token)
		if attr.Key != FieldSession {
			t.Errorf("Key = %q, want %q", attr.Key, FieldSession)
		}
		if attr.Value.String() == token {
			t.Error("session token should be masked")
		}
	})

	t.Run("nil masker disables masking", func(t *testing.T) {
		cf := NewCommonFields(nil)
		if got := cf.WithSession(token).Value.String(); got != token {
			t.Errorf("Value = %q, want %q", got, token)
		}
		if got := cf.WithSlotHandle([]byte{0x01, 0x02}).Value.String(); got != "0102" {
			t.Errorf("Value = %q, want %q", got, "0102")
		}
	})

	t.Run("SessionLogFields", func(t *testing.T) {
		cf := NewCommonFields(nil)
		fields := cf.SessionLogFields("EAC1_START", token)
		if len(fields) != 2 {
			t.Fatalf("len = %d, want 2", len(fields))
		}
		if a, ok := fields[0].(slog.Attr); !ok || a.Key != FieldEventID {
			t.Errorf("fields[0] = %v, want event_id attr", fields[0])
		}
	})
}
