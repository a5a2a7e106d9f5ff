package eac

import (
	"context"
	"encoding/asn1"

	"github.com/skythen/apdu"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
)

// APDU定数
const (
	insMSE            byte = 0x22
	insPSO            byte = 0x2A
	insGetChallenge   byte = 0x84
	insExternalAuth   byte = 0x82
	insGeneralAuth    byte = 0x86
	insSelect         byte = 0xA4
	insReadBinary     byte = 0xB0
	claChaining       byte = 0x10
	shortDataMax           = 255
	shortNeMax             = 256
	extendedNeMax          = 65536
	challengeLength        = 8
	tagAuxiliaryData       = 7  // 67
	tagDynamicAuthData     = 28 // 7C
	tagEphemeralPublicKey  = 17 // 91
)

// TerminalAuthentication はTA（BSI TR-03110 Part 3 B.3）のカードコマンドを発行する。
// リトライは行わない。
type TerminalAuthentication struct {
	d        card.Dispatcher
	slot     []byte
	extended bool
}

// NewTerminalAuthentication は新しいTerminalAuthenticationを生成する。
func NewTerminalAuthentication(d card.Dispatcher, slotHandle []byte, extended bool) *TerminalAuthentication {
	return &TerminalAuthentication{d: d, slot: slotHandle, extended: extended}
}

// GetChallenge はカードから8バイトのチャレンジを取得する。
func (t *TerminalAuthentication) GetChallenge(ctx context.Context) ([]byte, error) {
	r, err := card.Transmit(ctx, t.d, t.slot, "GET CHALLENGE",
		apdu.Capdu{Cla: 0x00, Ins: insGetChallenge, P1: 0x00, P2: 0x00, Ne: challengeLength})
	if err != nil {
		return nil, err
	}
	if len(r.Data) != challengeLength {
		return nil, malformed("GET CHALLENGE", "challenge length %d", len(r.Data))
	}
	return r.Data, nil
}

// VerifyCertificates はチェーンの各証明書をMSE:Set DSTとPSO:Verify Certificateでカードに検証させる。
func (t *TerminalAuthentication) VerifyCertificates(ctx context.Context, chain *cvc.Chain) error {
	for _, cert := range chain.Certificates() {
		dst := cvc.EncodeContext(3, false, cert.CAR.Bytes())
		if err := t.send(ctx, "MSE:SET DST", 0x81, 0xB6, insMSE, dst); err != nil {
			return err
		}
		if err := t.send(ctx, "PSO:VERIFY CERTIFICATE", 0x00, 0xBE, insPSO, cert.VerifyData()); err != nil {
			return err
		}
	}
	return nil
}

// MSESetAT はTA用のMSE:Set ATを送信する。
// aadが67タグ付きでない場合は67で包む。ephemeralKeyは圧縮表現に変換して送る。
func (t *TerminalAuthentication) MSESetAT(ctx context.Context, oid asn1.ObjectIdentifier, chr cvc.PublicKeyReference, ephemeralKey, aad []byte) error {
	oidValue, err := cvc.OIDContent(oid)
	if err != nil {
		return err
	}
	data := cvc.EncodeContext(0, false, oidValue)
	data = append(data, cvc.EncodeContext(3, false, chr.Bytes())...)
	if len(aad) > 0 {
		if aad[0] != 0x67 {
			aad = cvc.EncodeApplication(tagAuxiliaryData, true, aad)
		}
		data = append(data, aad...)
	}
	data = append(data, cvc.EncodeContext(tagEphemeralPublicKey, false, CompressKey(ephemeralKey))...)
	return t.send(ctx, "MSE:SET AT(TA)", 0x81, 0xA4, insMSE, data)
}

// ExternalAuthenticate は端末署名をカードに送る。
func (t *TerminalAuthentication) ExternalAuthenticate(ctx context.Context, signature []byte) error {
	return t.send(ctx, "EXTERNAL AUTHENTICATE", 0x00, 0x00, insExternalAuth, signature)
}

// send はデータ長に応じてコマンドチェーンで送信する。拡張長対応時は分割しない。
func (t *TerminalAuthentication) send(ctx context.Context, name string, p1, p2, ins byte, data []byte) error {
	return sendChained(ctx, t.d, t.slot, t.extended, name, apdu.Capdu{Cla: 0x00, Ins: ins, P1: p1, P2: p2, Data: data})
}

// sendChained はc.Dataが短縮長を超える場合にCLAの連鎖ビットを立てて分割送信する。
func sendChained(ctx context.Context, d card.Dispatcher, slot []byte, extended bool, name string, c apdu.Capdu) error {
	if extended || len(c.Data) <= shortDataMax {
		_, err := card.Transmit(ctx, d, slot, name, c)
		return err
	}
	data := c.Data
	for len(data) > shortDataMax {
		part := c
		part.Cla |= claChaining
		part.Data = data[:shortDataMax]
		part.Ne = 0
		if _, err := card.Transmit(ctx, d, slot, name, part); err != nil {
			return err
		}
		data = data[shortDataMax:]
	}
	last := c
	last.Data = data
	_, err := card.Transmit(ctx, d, slot, name, last)
	return err
}

// CompressKey はECDH公開鍵の圧縮表現（x座標）を返す。
// 非圧縮点（04||x||y）以外はそのまま返す。
func CompressKey(key []byte) []byte {
	if len(key) >= 3 && key[0] == 0x04 && (len(key)-1)%2 == 0 {
		return key[1 : 1+(len(key)-1)/2]
	}
	return key
}

