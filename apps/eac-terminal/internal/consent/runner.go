// Package consent は対話UIを持たないリーダー向けの同意処理を提供する。
package consent

import (
	"context"
	"log/slog"
	"slices"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac"
)

// ChannelEstablisher はPIN/CAN入力を含むPACEをリーダー側で実行する。
type ChannelEstablisher interface {
	EstablishChannel(ctx context.Context, slotHandle []byte, pinID eac.PasswordID, chat *cvc.CHAT, description []byte) (*eac.PACEOutput, error)
}

// AutoRunner はPACE対応リーダー（暗証番号入力パッド付き）向けのeac.UserConsentRunner。
// CHATの選択は自動で行い、PACEをChannelEstablisherに委ねる。
type AutoRunner struct {
	establisher ChannelEstablisher
	// acceptOptional が真の場合、任意CHATの権限も選択する
	acceptOptional bool
}

// NewAutoRunner は新しいAutoRunnerを生成する。
func NewAutoRunner(establisher ChannelEstablisher, acceptOptional bool) *AutoRunner {
	return &AutoRunner{establisher: establisher, acceptOptional: acceptOptional}
}

// Run は対話ステップ列を実行する。
// PACEの結果はreq経由で受け渡すため、取消・中断以外の失敗でもConsentOKを返す。
func (r *AutoRunner) Run(ctx context.Context, req eac.ConsentRequest) eac.ConsentStatus {
	data := req.Data

	if slices.Contains(req.Steps, eac.StepCHAT) && r.acceptOptional && data.OptionalCHAT != nil {
		selected := data.RequiredCHAT.With(data.OptionalCHAT.Rights()...)
		if err := data.SetSelectedCHAT(selected); err != nil {
			slog.Warn("任意CHATの選択に失敗、必須CHATのみで続行",
				"event_id", "CONSENT_CHAT_SELECT_ERR",
				"error", err,
			)
		}
	}

	if !slices.Contains(req.Steps, eac.StepPIN) && !slices.Contains(req.Steps, eac.StepCAN) {
		_ = req.FailPACE(eac.NewError(eac.KindInternal, "consent steps contain no password step", nil))
		return eac.ConsentOK
	}

	out, err := r.establisher.EstablishChannel(ctx, req.SlotHandle, data.PinID, data.SelectedCHAT(), data.RawDescription)
	if err != nil {
		_ = req.FailPACE(err)
		switch {
		case ctx.Err() != nil:
			return eac.ConsentInterrupted
		case eac.IsCancellation(err):
			slog.Info("PACEが利用者により取消",
				"event_id", "CONSENT_PACE_CANCELLED",
				"pin_id", data.PinID.String(),
			)
			return eac.ConsentCancelled
		default:
			slog.Warn("PACE確立に失敗",
				"event_id", "CONSENT_PACE_ERR",
				"pin_id", data.PinID.String(),
				"error", err,
			)
			return eac.ConsentOK
		}
	}

	if err := req.CompletePACE(*out); err != nil {
		// 試行側が既に結果を確定させている
		return eac.ConsentInterrupted
	}
	slog.Debug("PACE確立",
		"event_id", "CONSENT_PACE_DONE",
		"pin_id", data.PinID.String(),
		"retry_counter", out.RetryCounter,
	)
	return eac.ConsentOK
}
