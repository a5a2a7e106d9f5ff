package model

import "testing"

func TestStageConstants(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
		final bool
	}{
		{StageCreated, "created", false},
		{StageConnected, "connected", false},
		{StageEAC1Complete, "eac1_complete", false},
		{StageAwaitAdditional, "await_additional", false},
		{StageSuccess, "success", true},
		{StageFailure, "failure", true},
		{StageCancelled, "cancelled", true},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if string(tt.stage) != tt.want {
				t.Errorf("Stage = %q, want %q", tt.stage, tt.want)
			}
			if tt.stage.IsFinal() != tt.final {
				t.Errorf("IsFinal() = %v, want %v", tt.stage.IsFinal(), tt.final)
			}
		})
	}
}

func TestNewSessionRecord(t *testing.T) {
	rec := NewSessionRecord("token-1", 1704067200)

	if rec.Token != "token-1" {
		t.Errorf("Token = %q, want %q", rec.Token, "token-1")
	}
	if rec.Stage != StageCreated {
		t.Errorf("Stage = %q, want %q", rec.Stage, StageCreated)
	}
	if rec.CreatedAt != 1704067200 || rec.UpdatedAt != 1704067200 {
		t.Errorf("timestamps = %d/%d", rec.CreatedAt, rec.UpdatedAt)
	}
	if rec.CardKey != "" {
		t.Errorf("CardKey = %q, want empty", rec.CardKey)
	}
}
