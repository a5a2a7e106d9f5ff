package cvc_test

import (
	"errors"
	"testing"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc/cvctest"
)

// fixtureChain はCVCAリンク証明書→DV→端末 の3段チェーンを生成する。
func fixtureChain(t *testing.T, terminalRole cvc.Role) (link, dv, term []byte) {
	t.Helper()
	link = cvctest.Cert{CAR: "DECVCAeID00001", CHR: "DECVCAeID00002", CHAT: cvctest.MustCHAT(cvc.RoleCVCA)}.Build()
	dv = cvctest.Cert{CAR: "DECVCAeID00002", CHR: "DEDVeIDDTR00001", CHAT: cvctest.MustCHAT(cvc.RoleDVNonOfficial)}.Build()
	term = cvctest.Cert{CAR: "DEDVeIDDTR00001", CHR: "DEEXAMPLE00001", CHAT: cvctest.MustCHAT(terminalRole, cvc.ReadDG04)}.Build()
	return link, dv, term
}

func TestChain_Verify(t *testing.T) {
	link, dv, term := fixtureChain(t, cvc.RoleAuthenticationTerminal)

	tests := []struct {
		name string
		raw  [][]byte
	}{
		{"2段", [][]byte{dv, term}},
		{"3段", [][]byte{link, dv, term}},
		{"順不同入力", [][]byte{term, link, dv}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := cvc.ParseChain(tt.raw)
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if err := chain.Verify(); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
			if chain.TerminalCertificate().CHR != "DEEXAMPLE00001" {
				t.Errorf("TerminalCertificate().CHR = %q", chain.TerminalCertificate().CHR)
			}
		})
	}
}

func TestChain_VerifyBrokenLink(t *testing.T) {
	_, _, term := fixtureChain(t, cvc.RoleAuthenticationTerminal)
	stray := cvctest.Cert{CAR: "DECVCAeID00009", CHR: "DEDVOTHER00001", CHAT: cvctest.MustCHAT(cvc.RoleDVOfficial)}.Build()

	chain, err := cvc.ParseChain([][]byte{stray, term})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if err := chain.Verify(); !errors.Is(err, cvc.ErrChainBroken) {
		t.Errorf("err = %v, want ErrChainBroken", err)
	}
}

func TestChain_VerifyTerminalRole(t *testing.T) {
	_, dv, term := fixtureChain(t, cvc.RoleDVOfficial)
	chain, err := cvc.ParseChain([][]byte{dv, term})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if err := chain.Verify(); !errors.Is(err, cvc.ErrUnsupportedTerminalRole) {
		t.Errorf("err = %v, want ErrUnsupportedTerminalRole", err)
	}
}

func TestParseChain_Errors(t *testing.T) {
	if _, err := cvc.ParseChain(nil); !errors.Is(err, cvc.ErrEmptyChain) {
		t.Errorf("err = %v, want ErrEmptyChain", err)
	}
	if _, err := cvc.ParseChain([][]byte{{0x01, 0x02}}); !errors.Is(err, cvc.ErrMalformedCertificate) {
		t.Errorf("err = %v, want ErrMalformedCertificate", err)
	}
}

func TestChain_FromCARAndExtend(t *testing.T) {
	link, dv, term := fixtureChain(t, cvc.RoleAuthenticationTerminal)
	chain, err := cvc.ParseChain([][]byte{dv, term})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	// カードが旧CVCAしか知らない場合はリンク証明書が必要
	if _, err := chain.FromCAR("DECVCAeID00001"); !errors.Is(err, cvc.ErrChainBroken) {
		t.Errorf("err = %v, want ErrChainBroken", err)
	}

	linkCert, err := cvc.ParseCertificate(link)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	extended := chain.Extend([]*cvc.Certificate{linkCert})
	if extended.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", extended.Len())
	}
	sub, err := extended.FromCAR("DECVCAeID00001")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if sub.Len() != 3 || sub.Certificates()[0].CHR != "DECVCAeID00002" {
		t.Errorf("sub-chain starts with %q, len %d", sub.Certificates()[0].CHR, sub.Len())
	}

	sub, err = extended.FromCAR("DECVCAeID00002")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if sub.Len() != 2 {
		t.Errorf("Len() = %d, want 2", sub.Len())
	}
	if err := sub.Verify(); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	// 重複追加は無視される
	if again := extended.Extend([]*cvc.Certificate{linkCert}); again.Len() != 3 {
		t.Errorf("Len() after duplicate = %d, want 3", again.Len())
	}
}
