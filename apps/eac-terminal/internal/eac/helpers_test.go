package eac

import (
	"context"
	"encoding/asn1"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc/cvctest"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/dyncontext"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/trust"
)

var (
	testPACEOID = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 4, 2, 2}
	testCAOID   = asn1.ObjectIdentifier{0, 4, 0, 127, 0, 7, 2, 2, 3, 2, 2}

	testEIDServerCert = []byte("eid-server-leaf-certificate")
	testTCTokenCert   = []byte("tc-token-server-certificate")
	testTCTokenURL    = "https://eservice.example/tctoken"
	testSlotHandle    = []byte{0x01, 0x02, 0x03, 0x04}
	testChallenge     = []byte{0xC1, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6, 0xC7, 0xC8}
	testNonce         = []byte{0x4E, 0x4F, 0x4E, 0x43, 0x45, 0x30, 0x30, 0x31}
	testToken         = []byte{0x54, 0x4F, 0x4B, 0x45, 0x4E, 0x30, 0x30, 0x31}
	testCardSecurity  = []byte{0x30, 0x03, 0x02, 0x01, 0x01}
	testIDPICC        = []byte{0x49, 0x44, 0x50, 0x49, 0x43, 0x43}
	testEphemeralKey  = append([]byte{0x04}, make([]byte, 64)...)
)

// buildCardAccess はPACEとCAのSecurityInfoを含むEF.CardAccessを生成する。
func buildCardAccess(caKeyID int) []byte {
	var b cryptobyte.Builder
	b.AddASN1(casn1.SET, func(b *cryptobyte.Builder) {
		b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(testPACEOID)
			b.AddASN1Int64(2)
			b.AddASN1Int64(13)
		})
		b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(testCAOID)
			b.AddASN1Int64(2)
			if caKeyID >= 0 {
				b.AddASN1Int64(int64(caKeyID))
			}
		})
	})
	return b.BytesOrPanic()
}

// fixture は1回の認証試行に必要な証明書類。
type fixture struct {
	dv, terminal []byte
	description  []byte
	terminalCHAT *cvc.CHAT
}

func newFixture(t *testing.T, terminalRights ...cvc.AccessRight) fixture {
	t.Helper()
	desc := cvctest.Desc{
		IssuerName:  "Example DV",
		SubjectName: "Example eService",
		SubjectURL:  "https://eservice.example",
		Terms:       "Example terms of usage",
		CommCertificates: [][]byte{
			cvctest.SHA256(testEIDServerCert),
			cvctest.SHA256(testTCTokenCert),
		},
	}.Build()
	chat := cvctest.MustCHAT(cvc.RoleAuthenticationTerminal, terminalRights...)
	return fixture{
		dv: cvctest.Cert{
			CAR:  "DECVCAeID00002",
			CHR:  "DEDVeIDDTR00001",
			CHAT: cvctest.MustCHAT(cvc.RoleDVNonOfficial),
		}.Build(),
		terminal: cvctest.Cert{
			CAR:         "DEDVeIDDTR00001",
			CHR:         "DEEXAMPLE00001",
			CHAT:        chat,
			Description: desc,
		}.Build(),
		description:  desc,
		terminalCHAT: chat,
	}
}

func (f fixture) eac1(t *testing.T, required, optional *cvc.CHAT) *DIDAuthenticate {
	t.Helper()
	in := EAC1Input{
		Certificates:           [][]byte{f.terminal, f.dv},
		CertificateDescription: f.description,
	}
	if required != nil {
		in.RequiredCHAT = required.Bytes()
	}
	if optional != nil {
		in.OptionalCHAT = optional.Bytes()
	}
	req, err := NewDIDAuthenticate(testSlotHandle, TypeEAC1Input, in)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	return req
}

func validTrustInputs() trust.Inputs {
	return trust.Inputs{
		EIDServerCertificate: testEIDServerCert,
		TCTokenURL:           testTCTokenURL,
		TCTokenServerCertificates: []trust.ServerCertificate{
			{URL: testTCTokenURL, Certificate: testTCTokenCert},
		},
	}
}

// fakeCard はINSに応じた固定応答を返すカード。
type fakeCard struct {
	mu       sync.Mutex
	commands [][]byte
	// fail はINSごとに返すステータスワード
	fail map[byte][]byte
}

func newFakeCard() *fakeCard {
	return &fakeCard{fail: make(map[byte][]byte)}
}

func (c *fakeCard) Send(ctx context.Context, command []byte, _ []byte) ([]byte, error) {
	c.mu.Lock()
	c.commands = append(c.commands, append([]byte(nil), command...))
	sw, failing := c.fail[command[1]]
	c.mu.Unlock()
	if failing {
		return sw, nil
	}

	ok := []byte{0x90, 0x00}
	switch command[1] {
	case insGetChallenge:
		return append(append([]byte(nil), testChallenge...), ok...), nil
	case insGeneralAuth:
		body := append(cvc.EncodeContext(1, false, testNonce), cvc.EncodeContext(2, false, testToken)...)
		return append(cvc.EncodeApplication(tagDynamicAuthData, true, body), ok...), nil
	case insReadBinary:
		return append(append([]byte(nil), testCardSecurity...), ok...), nil
	default:
		return ok, nil
	}
}

func (c *fakeCard) instructions() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, 0, len(c.commands))
	for _, cmd := range c.commands {
		out = append(out, cmd[1])
	}
	return out
}

// fakeRunner は対話処理を関数で差し替える。
type fakeRunner struct {
	calls atomic.Int32
	run   func(ctx context.Context, req ConsentRequest) ConsentStatus
}

func (r *fakeRunner) Run(ctx context.Context, req ConsentRequest) ConsentStatus {
	r.calls.Add(1)
	return r.run(ctx, req)
}

// acceptingRunner は必須CHATを承認し、PACE成功を受け渡す。
func acceptingRunner() *fakeRunner {
	return &fakeRunner{run: func(_ context.Context, req ConsentRequest) ConsentStatus {
		if err := req.CompletePACE(PACEOutput{
			RetryCounter: 3,
			EFCardAccess: buildCardAccess(41),
			CurrentCAR:   []byte("DECVCAeID00002"),
			PreviousCAR:  []byte("DECVCAeID00001"),
			IDPICC:       testIDPICC,
		}); err != nil {
			return ConsentInterrupted
		}
		return ConsentOK
	}}
}

// newTestProtocol はチェック入力と検証器を受け渡し済みのProtocolを生成する。
func newTestProtocol(t *testing.T, d *fakeCard, r *fakeRunner, in trust.Inputs) *Protocol {
	t.Helper()
	dyn := dyncontext.New()
	dyn.Put(KeyTrustInputs, in)
	if err := dyncontext.MustPromise[SchemaValidator](dyn, KeySchemaValidator).Deliver(NewBindingValidator()); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	p := NewProtocol("session-token-for-tests", dyn, Config{Dispatcher: d, Consent: r})
	t.Cleanup(p.Close)
	return p
}

func mustRequest(t *testing.T, typ DataType, data any) *DIDAuthenticate {
	t.Helper()
	req, err := NewDIDAuthenticate(testSlotHandle, typ, data)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	return req
}
