package eac

import (
	"errors"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

func TestParseSecurityInfos(t *testing.T) {
	infos, err := ParseSecurityInfos(buildCardAccess(41))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(infos.Infos) != 2 {
		t.Fatalf("len(Infos) = %d, want 2", len(infos.Infos))
	}

	ca, err := infos.ChipAuthentication()
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if !ca.Protocol.Equal(testCAOID) {
		t.Errorf("Protocol = %v, want %v", ca.Protocol, testCAOID)
	}
	if ca.Version != 2 || ca.KeyID != 41 {
		t.Errorf("Version/KeyID = %d/%d, want 2/41", ca.Version, ca.KeyID)
	}

	pace := infos.PACE()
	if len(pace) != 1 || !pace[0].Protocol.Equal(testPACEOID) {
		t.Errorf("PACE() = %v", pace)
	}
}

func TestParseSecurityInfos_OptionalKeyID(t *testing.T) {
	infos, err := ParseSecurityInfos(buildCardAccess(-1))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	ca, err := infos.ChipAuthentication()
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if ca.KeyID != -1 {
		t.Errorf("KeyID = %d, want -1", ca.KeyID)
	}
}

// TestParseSecurityInfos_NonIntegerRequiredData は公開鍵情報のような構造化requiredDataを読み飛ばせることを検証する
func TestParseSecurityInfos_NonIntegerRequiredData(t *testing.T) {
	var b cryptobyte.Builder
	b.AddASN1(casn1.SET, func(b *cryptobyte.Builder) {
		b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier([]int{0, 4, 0, 127, 0, 7, 2, 2, 1, 2})
			b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1OctetString([]byte{0x01})
			})
			b.AddASN1Int64(41)
		})
		b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(testCAOID)
			b.AddASN1Int64(2)
		})
	})
	infos, err := ParseSecurityInfos(b.BytesOrPanic())
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if infos.Infos[0].KeyID != 41 {
		t.Errorf("KeyID = %d, want 41", infos.Infos[0].KeyID)
	}
	if _, err := infos.ChipAuthentication(); err != nil {
		t.Errorf("予期しないエラー: %v", err)
	}
}

func TestParseSecurityInfos_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"空", nil, ErrMalformedSecurityInfos},
		{"SETでない", []byte{0x30, 0x00}, ErrMalformedSecurityInfos},
		{"要素がSEQUENCEでない", []byte{0x31, 0x02, 0x04, 0x00}, ErrMalformedSecurityInfos},
		{"末尾に余剰", []byte{0x31, 0x00, 0x00}, ErrMalformedSecurityInfos},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSecurityInfos(tt.input); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSecurityInfos_NoChipAuthentication(t *testing.T) {
	infos, err := ParseSecurityInfos([]byte{0x31, 0x00})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if _, err := infos.ChipAuthentication(); !errors.Is(err, ErrNoChipAuthenticationInfo) {
		t.Errorf("err = %v, want ErrNoChipAuthenticationInfo", err)
	}
}
