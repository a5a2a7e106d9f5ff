package eac

import (
	"context"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/skythen/apdu"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
)

// EF.CardSecurityの読み出し
const (
	fidCardSecurity   uint16 = 0x011D
	swWrongParameters uint16 = 0x6B00
	maxReadOffset            = 0x7FFF
)

// ChipAuthentication はCA（BSI TR-03110 Part 3 B.2）のカードコマンドを発行する。
// リトライは行わない。
type ChipAuthentication struct {
	d        card.Dispatcher
	slot     []byte
	extended bool
}

// NewChipAuthentication は新しいChipAuthenticationを生成する。
func NewChipAuthentication(d card.Dispatcher, slotHandle []byte, extended bool) *ChipAuthentication {
	return &ChipAuthentication{d: d, slot: slotHandle, extended: extended}
}

// MSESetAT はCA用のMSE:Set ATを送信する。keyIDが負の場合は鍵参照を省略する。
func (c *ChipAuthentication) MSESetAT(ctx context.Context, oid asn1.ObjectIdentifier, keyID int) error {
	oidValue, err := cvc.OIDContent(oid)
	if err != nil {
		return err
	}
	data := cvc.EncodeContext(0, false, oidValue)
	if keyID >= 0 {
		data = append(data, cvc.EncodeContext(4, false, keyReference(keyID))...)
	}
	return sendChained(ctx, c.d, c.slot, c.extended, "MSE:SET AT(CA)",
		apdu.Capdu{Cla: 0x00, Ins: insMSE, P1: 0x41, P2: 0xA4, Data: data})
}

// GeneralAuthenticate は端末のエフェメラル公開鍵を送り、カードのnonceと認証トークンを得る。
func (c *ChipAuthentication) GeneralAuthenticate(ctx context.Context, ephemeralKey []byte) (nonce, token []byte, err error) {
	const name = "GENERAL AUTHENTICATE"
	data := cvc.EncodeApplication(tagDynamicAuthData, true, cvc.EncodeContext(0, false, ephemeralKey))
	r, err := card.Transmit(ctx, c.d, c.slot, name,
		apdu.Capdu{Cla: 0x00, Ins: insGeneralAuth, P1: 0x00, P2: 0x00, Data: data, Ne: c.maxNe()})
	if err != nil {
		return nil, nil, err
	}

	var outer asn1.RawValue
	rest, err := asn1.Unmarshal(r.Data, &outer)
	if err != nil {
		return nil, nil, malformed(name, "%v", err)
	}
	if len(rest) > 0 || outer.Class != asn1.ClassApplication || outer.Tag != tagDynamicAuthData {
		return nil, nil, malformed(name, "expected dynamic authentication data")
	}
	for body := outer.Bytes; len(body) > 0; {
		var v asn1.RawValue
		body, err = asn1.Unmarshal(body, &v)
		if err != nil {
			return nil, nil, malformed(name, "%v", err)
		}
		if v.Class != asn1.ClassContextSpecific {
			continue
		}
		switch v.Tag {
		case 1:
			nonce = v.Bytes
		case 2:
			token = v.Bytes
		}
	}
	if nonce == nil || token == nil {
		return nil, nil, malformed(name, "nonce or authentication token missing")
	}
	return nonce, token, nil
}

// ReadEFCardSecurity はEF.CardSecurityを選択し、ファイル終端まで読み出す。
// 1回の読み出し長は拡張長対応の有無で決まる。
func (c *ChipAuthentication) ReadEFCardSecurity(ctx context.Context) ([]byte, error) {
	fid := []byte{byte(fidCardSecurity >> 8), byte(fidCardSecurity & 0xFF)}
	if _, err := card.Transmit(ctx, c.d, c.slot, "SELECT EF.CardSecurity",
		apdu.Capdu{Cla: 0x00, Ins: insSelect, P1: 0x02, P2: 0x0C, Data: fid}); err != nil {
		return nil, err
	}

	chunk := c.maxNe()
	var out []byte
	for {
		if len(out) > maxReadOffset {
			return nil, malformed("READ BINARY", "EF.CardSecurity exceeds %d bytes", maxReadOffset)
		}
		off := len(out)
		r, err := card.Transmit(ctx, c.d, c.slot, "READ BINARY",
			apdu.Capdu{Cla: 0x00, Ins: insReadBinary, P1: byte(off >> 8), P2: byte(off), Ne: chunk},
			card.SWEndOfFile, swWrongParameters)
		if err != nil {
			return nil, err
		}
		sw := card.SW(r)
		if sw == swWrongParameters {
			// ファイル長が読み出し単位の倍数の場合の終端
			if len(out) == 0 {
				return nil, &card.StatusError{Command: "READ BINARY", SW: sw}
			}
			break
		}
		out = append(out, r.Data...)
		if sw == card.SWEndOfFile || len(r.Data) < chunk {
			break
		}
	}
	return out, nil
}

// keyReference は鍵IDを最小長の符号なし整数で表す。
func keyReference(keyID int) []byte {
	if keyID == 0 {
		return []byte{0}
	}
	return big.NewInt(int64(keyID)).Bytes()
}

func (c *ChipAuthentication) maxNe() int {
	if c.extended {
		return extendedNeMax
	}
	return shortNeMax
}

// malformed は応答データ不正のエラーを生成する。
func malformed(command, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", card.ErrMalformedResponse, command, fmt.Sprintf(format, args...))
}
