// Package card はカードへのコマンド送受信を抽象化する。
package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skythen/apdu"
)

// ステータスワード
const (
	SWSuccess      uint16 = 0x9000
	SWEndOfFile    uint16 = 0x6282
	SWWrongLength  uint16 = 0x6700
	SWSecurityCond uint16 = 0x6982
)

// Dispatcher はカードへコマンドを送り応答を得る。
// 送受信はハードウェアI/Oでブロックしうる。ctxの終了時はErrInterruptedで戻ること。
type Dispatcher interface {
	Send(ctx context.Context, command []byte, slotHandle []byte) ([]byte, error)
}

// DispatcherFunc は関数をDispatcherとして扱う。
type DispatcherFunc func(ctx context.Context, command []byte, slotHandle []byte) ([]byte, error)

// Send はDispatcherを実装する。
func (f DispatcherFunc) Send(ctx context.Context, command []byte, slotHandle []byte) ([]byte, error) {
	return f(ctx, command, slotHandle)
}

// SW は応答APDUのステータスワードを返す。rがnilの場合は0を返す。
func SW(r *apdu.Rapdu) uint16 {
	if r == nil {
		return 0
	}
	return uint16(r.SW1)<<8 | uint16(r.SW2)
}

// Transmit はコマンドAPDUを送信し、応答APDUを解析する。
// ステータスワードが9000またはacceptに含まれない場合は*StatusErrorを返す。
func Transmit(ctx context.Context, d Dispatcher, slotHandle []byte, name string, c apdu.Capdu, accept ...uint16) (*apdu.Rapdu, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInterrupted, name, err)
	}
	cmd, err := c.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}

	raw, err := d.Send(ctx, cmd, slotHandle)
	if err != nil {
		return nil, classify(ctx, name, err)
	}

	r, err := apdu.ParseRapdu(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, name, err)
	}
	sw := SW(r)
	if sw == SWSuccess {
		return r, nil
	}
	for _, ok := range accept {
		if sw == ok {
			return r, nil
		}
	}
	slog.Debug("カードがコマンドを拒否",
		"event_id", "CARD_SW_ERROR",
		"command", name,
		"sw", fmt.Sprintf("%04X", sw),
	)
	return r, &StatusError{Command: name, SW: sw}
}

// classify は送信エラーを中断と通信失敗に分類する。
func classify(ctx context.Context, name string, err error) error {
	switch {
	case errors.Is(err, ErrInterrupted):
		return err
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s: %v", ErrInterrupted, name, err)
	case errors.Is(err, ErrTransport):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", ErrTransport, name, err)
	}
}
