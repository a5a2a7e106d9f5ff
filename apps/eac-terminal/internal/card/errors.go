package card

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport はカードとの通信経路の失敗
	ErrTransport = errors.New("card transport failure")

	// ErrInterrupted は試行の中断によって通信が打ち切られた場合のエラー
	ErrInterrupted = errors.New("card communication interrupted")

	// ErrMalformedResponse は応答APDUまたは応答データのTLVが不正な場合のエラー
	ErrMalformedResponse = errors.New("malformed card response")

	// ErrCardRejected はカードがエラーステータスワードを返した場合のエラー
	ErrCardRejected = errors.New("card rejected command")
)

// StatusError はカードが返したステータスワードを保持する。
type StatusError struct {
	Command string
	SW      uint16
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s rejected by card: SW=%04X", e.Command, e.SW)
}

// Unwrap はErrCardRejectedを返す。
func (e *StatusError) Unwrap() error {
	return ErrCardRejected
}
