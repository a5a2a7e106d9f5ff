package trust

import (
	"errors"
	"testing"
)

func TestCheckSameOrigin(t *testing.T) {
	tests := []struct {
		name    string
		tcToken string
		subject string
		wantErr bool
	}{
		{"完全一致", "https://eservice.example/tc", "https://eservice.example", false},
		{"大文字小文字", "HTTPS://EService.Example/tc", "https://eservice.example", false},
		{"既定ポート明示https", "https://eservice.example:443/tc", "https://eservice.example", false},
		{"既定ポート明示http", "http://eservice.example/tc", "http://eservice.example:80", false},
		{"ポート違い", "https://eservice.example:8443/tc", "https://eservice.example", true},
		{"スキーム違い", "http://eservice.example/tc", "https://eservice.example", true},
		{"ホスト違い", "https://a.example/tc", "https://b.example", true},
		{"subjectURLなし", "https://eservice.example/tc", "", true},
		{"相対URL", "/tc", "https://eservice.example", true},
		{"既定ポートのないスキーム", "ftp://eservice.example/tc", "ftp://eservice.example", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSameOrigin(tt.tcToken, tt.subject)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrPrerequisitesNotSatisfied) {
				t.Errorf("err = %v, want ErrPrerequisitesNotSatisfied", err)
			}
		})
	}
}

func TestOriginKey(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"https://eservice.example/path?q=1", "https://eservice.example", false},
		{"https://eservice.example:8443/path", "https://eservice.example:8443", false},
		{"relative/path", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := OriginKey(tt.raw)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("OriginKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
