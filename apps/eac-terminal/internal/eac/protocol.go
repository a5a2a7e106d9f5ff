// Package eac はEAC（PACE→TA→CA）の端末側ステップ機械を実装する。
package eac

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/dyncontext"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/logging"
)

// Config はProtocolの依存と動作設定。
type Config struct {
	Dispatcher card.Dispatcher
	Consent    UserConsentRunner
	// ExtendedLength はリーダーの拡張長APDU対応可否
	ExtendedLength bool
	// AllowSkipChecks が偽の場合、有効化要求のSkipChecksは無視される
	AllowSkipChecks bool
	// AttemptTimeout はステップ1回あたりの上限。0は無制限
	AttemptTimeout time.Duration
	Fields         *logging.CommonFields
}

// Protocol は1つの認証試行のEACステップ機械。
// Authenticateの呼び出しは直列化される。
type Protocol struct {
	mu      sync.Mutex
	session string
	cfg     Config
	dyn     *dyncontext.Context

	stateMu sync.Mutex
	state   State

	// activation は試行全体の生存期間。対話側ワーカーとカード通信はこれに従う
	activation       context.Context
	cancelActivation context.CancelFunc

	internal *InternalData
}

// NewProtocol は新しいProtocolを生成する。dynがnilの場合は新規に作成する。
func NewProtocol(session string, dyn *dyncontext.Context, cfg Config) *Protocol {
	if dyn == nil {
		dyn = dyncontext.New()
	}
	if cfg.Fields == nil {
		cfg.Fields = logging.NewCommonFields(logging.NewMasker(true))
	}
	activation, cancel := context.WithCancel(context.Background())
	dyn.Put(KeyActivationCancel, cancel)
	return &Protocol{
		session:          session,
		cfg:              cfg,
		dyn:              dyn,
		state:            StateNew,
		activation:       activation,
		cancelActivation: cancel,
	}
}

// Context は試行スコープの動的コンテキストを返す。
func (p *Protocol) Context() *dyncontext.Context {
	return p.dyn
}

// State は現在の状態を返す。
func (p *Protocol) State() State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.state
}

// Authenticate は認証要求を種別に応じたステップで処理する。
// 失敗はすべてResultに変換され、errorとしては返さない。
func (p *Protocol) Authenticate(ctx context.Context, req *DIDAuthenticate) *DIDAuthenticateResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	if req == nil {
		return p.fail(NewError(KindMalformedInput, "empty DIDAuthenticate request", nil))
	}
	if p.cfg.Dispatcher == nil || p.cfg.Consent == nil {
		return p.fail(NewError(KindInternal, "protocol is missing its dispatcher or consent runner", nil))
	}

	var (
		typ DataType
		out any
		err error
	)
	switch req.Type {
	case TypeEAC1Input:
		typ = TypeEAC1Output
		out, err = p.runEAC1(ctx, req)
	case TypeEAC2Input:
		typ = TypeEAC2Output
		out, err = p.runEAC2(ctx, req)
	case TypeEACAdditionalInput:
		typ = TypeEACAdditionalOutput
		out, err = p.runAdditional(ctx, req)
	default:
		err = NewError(KindMalformedInput, fmt.Sprintf("unsupported protocol data type %q", req.Type), nil)
	}
	if err != nil {
		return p.fail(err)
	}
	return &DIDAuthenticateResponse{Result: ResultOK(), Type: typ, Data: out}
}

// CancelProcessing は処理中の取消を受け付ける。EAC2の完了時に取消結果へ置き換えられる。
func (p *Protocol) CancelProcessing() {
	if err := dyncontext.MustPromise[struct{}](p.dyn, KeyProcessingCancellation).Deliver(struct{}{}); err == nil {
		slog.Info("処理中の取消を受付", p.cfg.Fields.SessionLogFields("EAC_PROCESSING_CANCEL", p.session)...)
	}
}

// Close は試行を破棄する。進行中のカード通信と対話側ワーカーは中断され、
// 未受け渡しのPACE結果には中断エラーが受け渡される。
func (p *Protocol) Close() {
	p.release(NewError(KindInterrupted, "authentication attempt closed", nil))
}

// release は終了状態に達した試行の待機者をすべて解放する。
func (p *Protocol) release(cause error) {
	p.cancelActivation()
	_ = dyncontext.MustPromise[error](p.dyn, KeyPACEResult).Deliver(cause)
}

// stepContext はリクエストのctxに試行の中断とタイムアウトを重ねたctxを返す。
func (p *Protocol) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var cancel context.CancelFunc
	if p.cfg.AttemptTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	stop := context.AfterFunc(p.activation, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// slotHandle は要求のスロットハンドル、無ければ接続時に記録されたものを返す。
func (p *Protocol) slotHandle(req *DIDAuthenticate) []byte {
	if len(req.SlotHandle) > 0 {
		return req.SlotHandle
	}
	if h, ok, _ := dyncontext.Value[[]byte](p.dyn, KeyConnectionHandle); ok {
		return h
	}
	return nil
}

// advance はイベントに従って状態を遷移させる。
func (p *Protocol) advance(event StateEvent) error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	next, err := ValidateTransition(p.state, event)
	if err != nil {
		return fmt.Errorf("%w: %s in state %s", err, event, p.state)
	}
	slog.Debug("EAC状態遷移",
		"event_id", "EAC_STATE",
		p.cfg.Fields.WithSession(p.session),
		"from", string(p.state),
		logging.WithState(string(next)),
	)
	p.state = next
	return nil
}

// fail はエラーを終了状態と結果に変換する。
func (p *Protocol) fail(err error) *DIDAuthenticateResponse {
	e := Classify(err)
	event := EventFail
	if e.Kind == KindUserCancelled || e.Kind == KindInterrupted {
		event = EventCancel
	}
	from := p.State()
	_ = p.advance(event)
	p.dyn.Put(KeyAuthenticationDone, false)
	p.release(e)

	attrs := append(p.cfg.Fields.SessionLogFields("EAC_ATTEMPT_FAILED", p.session),
		"from", string(from),
		"kind", e.Kind.String(),
		"result_minor", e.Minor(),
		logging.WithError(err),
	)
	if event == EventCancel {
		slog.Info("EAC認証試行を取消", attrs...)
	} else {
		slog.Warn("EAC認証試行が失敗", attrs...)
	}
	return &DIDAuthenticateResponse{Result: e.Result()}
}
