package eac

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/dyncontext"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/trust"
)

// runEAC1 はEAC1入力を処理する。
// 信頼性チェックは対話側ワーカーの開始より前に必ず完了する。
func (p *Protocol) runEAC1(ctx context.Context, req *DIDAuthenticate) (*EAC1Output, error) {
	if err := p.advance(EventEAC1Received); err != nil {
		return nil, err
	}

	var in EAC1Input
	if err := json.Unmarshal(req.Data, &in); err != nil {
		return nil, NewError(KindMalformedInput, "decode EAC1 input", err)
	}
	data, err := parseEAC1(req, &in)
	if err != nil {
		return nil, err
	}
	p.dyn.Put(KeyEACData, data)
	if err := p.advance(EventInputParsed); err != nil {
		return nil, err
	}

	if err := trust.Perform(data.Description, p.trustInputs()); err != nil {
		return nil, err
	}
	if err := p.advance(EventChecksPassed); err != nil {
		return nil, err
	}

	if err := cvc.VerifyAgainstDescription(data.TerminalCertificate, data.Description); err != nil {
		return nil, err
	}
	if err := data.Certificates.Verify(); err != nil {
		return nil, err
	}
	if err := p.advance(EventChainVerified); err != nil {
		return nil, err
	}

	if err := deriveCHAT(data); err != nil {
		return nil, err
	}
	if err := p.advance(EventCHATDerived); err != nil {
		return nil, err
	}

	stepCtx, cancel := p.stepContext(ctx)
	defer cancel()

	slot := p.slotHandle(req)
	pace := dyncontext.MustPromise[error](p.dyn, KeyPACEResult)
	p.startConsent(NewConsentRequest(p.dyn, consentSteps(data.PinID), data, slot))
	if err := p.advance(EventConsentStarted); err != nil {
		return nil, err
	}

	paceErr, err := pace.Deref(stepCtx)
	if err != nil {
		interrupted := Classify(err)
		_ = pace.Deliver(interrupted)
		return nil, interrupted
	}
	if paceErr != nil {
		return nil, paceErr
	}
	paceOut := data.PACEOutput()
	if paceOut == nil {
		return nil, NewError(KindInternal, "PACE reported success without output", nil)
	}
	if err := p.advance(EventPACEDone); err != nil {
		return nil, err
	}

	ta := NewTerminalAuthentication(p.cfg.Dispatcher, slot, p.cfg.ExtendedLength)
	challenge, err := ta.GetChallenge(stepCtx)
	if err != nil {
		return nil, err
	}

	internal, err := newInternalData(data, paceOut, challenge)
	if err != nil {
		return nil, err
	}
	p.internal = internal

	out := BuildEAC1Output(data.SelectedCHAT(), *paceOut, challenge)
	if err := p.advance(EventEAC1Built); err != nil {
		return nil, err
	}
	slog.Info("EAC1完了",
		append(p.cfg.Fields.SessionLogFields("EAC1_COMPLETE", p.session),
			"pin_id", data.PinID.String(),
			"chat", data.SelectedCHAT().String(),
		)...,
	)
	return &out, nil
}

// parseEAC1 はEAC1入力の証明書・証明書記述・CHATを解析する。
// 必須・任意CHATが省略された場合は権限なしのCHATとして扱う。
func parseEAC1(req *DIDAuthenticate, in *EAC1Input) (*EACData, error) {
	chain, err := cvc.ParseChain(in.Certificates)
	if err != nil {
		return nil, err
	}
	terminal := chain.TerminalCertificate()
	if terminal.CHAT == nil {
		return nil, NewError(KindMalformedInput, "terminal certificate has no CHAT", nil)
	}
	desc, err := cvc.ParseDescription(in.CertificateDescription)
	if err != nil {
		return nil, err
	}
	required, err := parseRequestedCHAT(in.RequiredCHAT)
	if err != nil {
		return nil, err
	}
	optional, err := parseRequestedCHAT(in.OptionalCHAT)
	if err != nil {
		return nil, err
	}

	return &EACData{
		Request:             req,
		Certificates:        chain,
		TerminalCertificate: terminal,
		Description:         desc,
		RawDescription:      in.CertificateDescription,
		TerminalCHAT:        terminal.CHAT,
		RequiredCHAT:        required,
		OptionalCHAT:        optional,
		AAD:                 in.AuthenticatedAuxiliaryData,
		TransactionInfo:     strings.TrimSpace(in.TransactionInfo),
		PinID:               PasswordPIN,
	}, nil
}

func parseRequestedCHAT(b []byte) (*cvc.CHAT, error) {
	if len(b) == 0 {
		return cvc.NewCHAT(cvc.RoleAuthenticationTerminal)
	}
	return cvc.ParseCHAT(b)
}

// deriveCHAT は端末CHATを上限として必須・任意CHATを確定し、選択CHATを必須CHATで初期化する。
// 端末CHATがCAN_ALLOWEDを持つ場合はPACEのパスワードをCANに切り替える。
func deriveCHAT(data *EACData) error {
	if data.TerminalCHAT.Has(cvc.CANAllowed) {
		data.RequiredCHAT = data.RequiredCHAT.With(cvc.CANAllowed)
		data.OptionalCHAT = data.OptionalCHAT.With(cvc.CANAllowed)
		data.PinID = PasswordCAN
	}
	if err := cvc.VerifyNotExceeding(data.TerminalCHAT, data.RequiredCHAT); err != nil {
		return err
	}
	data.OptionalCHAT = data.OptionalCHAT.RestrictAccessRights(data.TerminalCHAT)
	return data.SetSelectedCHAT(data.RequiredCHAT.With())
}

// consentSteps はパスワード種別に応じた対話ステップ列を返す。
func consentSteps(pin PasswordID) []ConsentStep {
	pw := StepPIN
	if pin == PasswordCAN {
		pw = StepCAN
	}
	return []ConsentStep{StepCVC, StepCHAT, pw, StepProcessing}
}

// trustInputs は動的コンテキストからチェック入力を取り出す。
func (p *Protocol) trustInputs() trust.Inputs {
	in, _, err := dyncontext.Value[trust.Inputs](p.dyn, KeyTrustInputs)
	if err != nil {
		slog.Error("チェック入力の型が不正",
			append(p.cfg.Fields.SessionLogFields("EAC_TRUST_INPUTS_INVALID", p.session), "error", err)...,
		)
	}
	if in.SkipChecks && !p.cfg.AllowSkipChecks {
		slog.Warn("チェック無効化の要求を無視",
			p.cfg.Fields.SessionLogFields("EAC_SKIP_CHECKS_REJECTED", p.session)...,
		)
		in.SkipChecks = false
	}
	return in
}

// startConsent は対話側ワーカーを開始する。
// 取消・中断時は、PACE結果が未受け渡しなら取消エラーを受け渡し、
// 受け渡し済みでその原因が取消・タイムアウトなら進行中のカード通信を中断させる。
func (p *Protocol) startConsent(req ConsentRequest) {
	pace := dyncontext.MustPromise[error](p.dyn, KeyPACEResult)
	go func() {
		status := p.cfg.Consent.Run(p.activation, req)
		if status == ConsentOK {
			return
		}
		slog.Info("対話処理が完了せず終了",
			append(p.cfg.Fields.SessionLogFields("EAC_CONSENT_ABORTED", p.session),
				"status", status.String(),
			)...,
		)
		p.dyn.Put(KeyAuthenticationDone, false)

		if err := pace.Deliver(NewError(KindUserCancelled, "user cancelled the consent dialog", nil)); err == nil {
			return
		}
		paceErr, _ := pace.DerefNonblocking()
		if paceErr == nil {
			// PACE成功後の取消は処理中取消として扱う
			_ = dyncontext.MustPromise[struct{}](p.dyn, KeyProcessingCancellation).Deliver(struct{}{})
			return
		}
		if IsCancellation(paceErr) && status != ConsentInterrupted {
			slog.Debug("進行中のカード通信を中断",
				p.cfg.Fields.SessionLogFields("EAC_ACTIVATION_INTERRUPT", p.session)...,
			)
			p.cancelActivation()
		}
	}()
}

// newInternalData はEAC2で使う内部データを組み立てる。
func newInternalData(data *EACData, pace *PACEOutput, challenge []byte) (*InternalData, error) {
	infos, err := ParseSecurityInfos(pace.EFCardAccess)
	if err != nil {
		return nil, err
	}
	internal := &InternalData{
		SecurityInfos: infos,
		Chain:         data.Certificates,
		AAD:           data.AAD,
		IDPICC:        pace.IDPICC,
		Challenge:     challenge,
	}
	if internal.CurrentCAR, err = cvc.ParsePublicKeyReference(pace.CurrentCAR); err != nil {
		return nil, NewError(KindMalformedInput, "current CAR from PACE", err)
	}
	if len(pace.PreviousCAR) > 0 {
		if internal.PreviousCAR, err = cvc.ParsePublicKeyReference(pace.PreviousCAR); err != nil {
			return nil, NewError(KindMalformedInput, "previous CAR from PACE", err)
		}
	}
	return internal, nil
}

// BuildEAC1Output はEAC1出力を組み立てる。入力のみから決まる純粋関数。
func BuildEAC1Output(selected *cvc.CHAT, pace PACEOutput, challenge []byte) EAC1Output {
	cars := [][]byte{pace.CurrentCAR}
	if len(pace.PreviousCAR) > 0 {
		cars = append(cars, pace.PreviousCAR)
	}
	return EAC1Output{
		RetryCounter: pace.RetryCounter,
		CHAT:         selected.Bytes(),
		CARs:         cars,
		EFCardAccess: pace.EFCardAccess,
		IDPICC:       pace.IDPICC,
		Challenge:    challenge,
	}
}
