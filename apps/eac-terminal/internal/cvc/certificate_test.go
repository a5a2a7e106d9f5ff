package cvc_test

import (
	"bytes"
	"crypto"
	"encoding/asn1"
	"errors"
	"testing"
	"time"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc/cvctest"
)

func TestParseCertificate(t *testing.T) {
	chat := cvctest.MustCHAT(cvc.RoleAuthenticationTerminal, cvc.ReadDG04, cvc.AgeVerification)
	eff := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	der := cvctest.Cert{
		CAR:        "DEDVeIDDTR00001",
		CHR:        "DETERM0000001",
		CHAT:       chat,
		Effective:  eff,
		Expiration: eff.AddDate(0, 1, 0),
	}.Build()

	cert, err := cvc.ParseCertificate(der)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if cert.CAR != "DEDVeIDDTR00001" {
		t.Errorf("CAR = %q", cert.CAR)
	}
	if cert.CHR != "DETERM0000001" {
		t.Errorf("CHR = %q", cert.CHR)
	}
	if cert.CHR.CountryCode() != "DE" || cert.CHR.SequenceNumber() != "00001" || cert.CHR.HolderMnemonic() != "TERM00" {
		t.Errorf("CHR parts = %q/%q/%q", cert.CHR.CountryCode(), cert.CHR.HolderMnemonic(), cert.CHR.SequenceNumber())
	}
	if !cert.CHAT.Equal(chat) {
		t.Errorf("CHAT = %s, want %s", cert.CHAT, chat)
	}
	if !cert.EffectiveDate.Equal(eff) {
		t.Errorf("EffectiveDate = %v, want %v", cert.EffectiveDate, eff)
	}
	if !cert.PublicKey.OID.Equal(cvctest.OIDECDSASHA256) {
		t.Errorf("PublicKey.OID = %s", cert.PublicKey.OID)
	}
	if len(cert.PublicKey.Point()) != 65 {
		t.Errorf("Point() length = %d, want 65", len(cert.PublicKey.Point()))
	}
	if !bytes.Equal(cert.Raw, der) {
		t.Error("Raw should hold the complete encoding")
	}
	if !bytes.HasPrefix(cert.VerifyData(), []byte{0x7F, 0x4E}) {
		t.Errorf("VerifyData() should start with 7F4E: %X", cert.VerifyData()[:2])
	}
}

func TestParseCertificate_Malformed(t *testing.T) {
	good := cvctest.Cert{CAR: "DECVCA00001", CHR: "DEDV000001", CHAT: cvctest.MustCHAT(cvc.RoleDVOfficial)}.Build()

	tests := []struct {
		name string
		der  []byte
	}{
		{"空", nil},
		{"途中で切断", good[:len(good)-3]},
		{"末尾にゴミ", append(append([]byte{}, good...), 0x00)},
		{"外側タグ不正", append([]byte{0x7F, 0x22}, good[2:]...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cvc.ParseCertificate(tt.der); !errors.Is(err, cvc.ErrMalformedCertificate) {
				t.Errorf("err = %v, want ErrMalformedCertificate", err)
			}
		})
	}
}

func TestSplitCertificates(t *testing.T) {
	a := cvctest.Cert{CAR: "DECVCA00001", CHR: "DEDV000001", CHAT: cvctest.MustCHAT(cvc.RoleDVOfficial)}.Build()
	b := cvctest.Cert{CAR: "DEDV000001", CHR: "DETERM00001", CHAT: cvctest.MustCHAT(cvc.RoleAuthenticationTerminal)}.Build()

	certs, err := cvc.SplitCertificates(append(append([]byte{}, a...), b...))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(certs) != 2 {
		t.Fatalf("len = %d, want 2", len(certs))
	}
	if certs[1].CHR != "DETERM00001" {
		t.Errorf("certs[1].CHR = %q", certs[1].CHR)
	}
}

func TestHashForKeyOID(t *testing.T) {
	tests := []struct {
		oid     asn1.ObjectIdentifier
		want    crypto.Hash
		wantErr bool
	}{
		{asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2, 1}, crypto.SHA1, false},
		{asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2, 2}, crypto.SHA224, false},
		{asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2, 3}, crypto.SHA256, false},
		{asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2, 4}, crypto.SHA384, false},
		{asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2, 5}, crypto.SHA512, false},
		{asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 1, 4}, crypto.SHA256, false},
		{asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 2, 2, 9}, 0, true},
		{asn1.ObjectIdentifier{1, 2, 3}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.oid.String(), func(t *testing.T) {
			got, err := cvc.HashForKeyOID(tt.oid)
			if tt.wantErr {
				if !errors.Is(err, cvc.ErrUnsupportedAlgorithm) {
					t.Errorf("err = %v, want ErrUnsupportedAlgorithm", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("HashForKeyOID() = %v, %v, want %v", got, err, tt.want)
			}
		})
	}
}

func TestVerifyAgainstDescription(t *testing.T) {
	descDER := cvctest.Desc{
		IssuerName:  "D-Trust GmbH",
		SubjectName: "Example eService",
		SubjectURL:  "https://eservice.example",
		Terms:       "terms",
	}.Build()
	desc, err := cvc.ParseDescription(descDER)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	otherDER := cvctest.Desc{IssuerName: "x", SubjectName: "y", Terms: "z"}.Build()
	other, err := cvc.ParseDescription(otherDER)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	chat := cvctest.MustCHAT(cvc.RoleAuthenticationTerminal)
	bound, err := cvc.ParseCertificate(cvctest.Cert{CAR: "DEDV000001", CHR: "DETERM00001", CHAT: chat, Description: descDER}.Build())
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	unbound, err := cvc.ParseCertificate(cvctest.Cert{CAR: "DEDV000001", CHR: "DETERM00001", CHAT: chat}.Build())
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	if err := cvc.VerifyAgainstDescription(bound, desc); err != nil {
		t.Errorf("bound certificate should match: %v", err)
	}
	if err := cvc.VerifyAgainstDescription(bound, other); !errors.Is(err, cvc.ErrCertificateMismatch) {
		t.Errorf("err = %v, want ErrCertificateMismatch", err)
	}
	if err := cvc.VerifyAgainstDescription(unbound, desc); !errors.Is(err, cvc.ErrCertificateMismatch) {
		t.Errorf("missing extension: err = %v, want ErrCertificateMismatch", err)
	}
}
