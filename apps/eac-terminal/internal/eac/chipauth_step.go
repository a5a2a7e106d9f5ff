package eac

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/dyncontext"
)

// runEAC2 はEAC2入力を処理する。署名が無い場合はチャレンジを返して追加入力を待つ。
func (p *Protocol) runEAC2(ctx context.Context, req *DIDAuthenticate) (*EAC2Output, error) {
	if err := p.advance(EventEAC2Received); err != nil {
		return nil, err
	}
	if p.internal == nil {
		return nil, NewError(KindInternal, "EAC1 internal data missing", nil)
	}

	var in EAC2Input
	if err := json.Unmarshal(req.Data, &in); err != nil {
		return nil, NewError(KindMalformedInput, "decode EAC2 input", err)
	}
	if err := p.advance(EventSchemaPending); err != nil {
		return nil, err
	}

	stepCtx, cancel := p.stepContext(ctx)
	defer cancel()

	if err := p.validateSchema(stepCtx, &in); err != nil {
		return nil, err
	}
	if err := p.advance(EventSchemaValid); err != nil {
		return nil, err
	}

	additional := make([]*cvc.Certificate, 0, len(in.Certificates))
	for _, der := range in.Certificates {
		c, err := cvc.ParseCertificate(der)
		if err != nil {
			return nil, err
		}
		additional = append(additional, c)
	}
	p.internal.Chain = p.internal.Chain.Extend(additional)
	p.internal.EphemeralKey = in.EphemeralPublicKey

	ta := NewTerminalAuthentication(p.cfg.Dispatcher, p.slotHandle(req), p.cfg.ExtendedLength)
	if err := p.prepareTerminalAuthentication(stepCtx, ta); err != nil {
		return nil, err
	}

	if len(in.Signature) == 0 {
		challenge, err := ta.GetChallenge(stepCtx)
		if err != nil {
			return nil, err
		}
		p.internal.Challenge = challenge
		if err := p.advance(EventSignatureMissing); err != nil {
			return nil, err
		}
		slog.Info("TA署名の追加入力待ち",
			p.cfg.Fields.SessionLogFields("EAC2_AWAIT_SIGNATURE", p.session)...,
		)
		return &EAC2Output{Challenge: challenge}, nil
	}

	p.internal.Signature = in.Signature
	return p.finishAuthentication(stepCtx, req, ta)
}

// runAdditional はTA署名の追加入力を処理する。
func (p *Protocol) runAdditional(ctx context.Context, req *DIDAuthenticate) (*EAC2Output, error) {
	if err := p.advance(EventAdditionalReceived); err != nil {
		return nil, err
	}

	var in EACAdditionalInput
	if err := json.Unmarshal(req.Data, &in); err != nil {
		return nil, NewError(KindMalformedInput, "decode EAC additional input", err)
	}
	if err := p.advance(EventSchemaPending); err != nil {
		return nil, err
	}

	stepCtx, cancel := p.stepContext(ctx)
	defer cancel()

	if err := p.validateSchema(stepCtx, &in); err != nil {
		return nil, err
	}
	if err := p.advance(EventSchemaValid); err != nil {
		return nil, err
	}

	p.internal.Signature = in.Signature
	ta := NewTerminalAuthentication(p.cfg.Dispatcher, p.slotHandle(req), p.cfg.ExtendedLength)
	return p.finishAuthentication(stepCtx, req, ta)
}

// validateSchema は検証器の受け渡しを待ってから入力構造を検証する。
// 暗号処理より前に行い、不正な構造は処理しない。
func (p *Protocol) validateSchema(ctx context.Context, msg any) error {
	promise, err := dyncontext.GetPromise[SchemaValidator](p.dyn, KeySchemaValidator)
	if err != nil {
		return NewError(KindInternal, "schema validator slot", err)
	}
	v, err := promise.Deref(ctx)
	if err != nil {
		return NewError(KindInternal, "schema validator not available", err)
	}
	ok, err := v.Validate(msg)
	if err != nil {
		return NewError(KindInternal, "schema validation failed to run", err)
	}
	if !ok {
		p.dyn.Put(KeyAuthenticationFailed, true)
		return NewError(KindSchemaInvalid, "message does not conform to schema", nil)
	}
	return nil
}

// prepareTerminalAuthentication はカードが信頼するCARから端末証明書までを検証させ、TA用のMSE:Set ATを送る。
func (p *Protocol) prepareTerminalAuthentication(ctx context.Context, ta *TerminalAuthentication) error {
	chain, err := p.internal.Chain.FromCAR(p.internal.CurrentCAR)
	if err != nil && p.internal.PreviousCAR != "" {
		chain, err = p.internal.Chain.FromCAR(p.internal.PreviousCAR)
	}
	if err != nil {
		return err
	}
	if err := ta.VerifyCertificates(ctx, chain); err != nil {
		return err
	}
	terminal := chain.TerminalCertificate()
	return ta.MSESetAT(ctx, terminal.PublicKey.OID, terminal.CHR, p.internal.EphemeralKey, p.internal.AAD)
}

// finishAuthentication はExternal AuthenticateでTAを完了し、CAを実行して出力を組み立てる。
// 最後に処理中取消を非ブロックで確認し、受付済みなら取消結果とする。
func (p *Protocol) finishAuthentication(ctx context.Context, req *DIDAuthenticate, ta *TerminalAuthentication) (*EAC2Output, error) {
	if err := ta.ExternalAuthenticate(ctx, p.internal.Signature); err != nil {
		return nil, err
	}
	if err := p.advance(EventTADone); err != nil {
		return nil, err
	}

	info, err := p.internal.SecurityInfos.ChipAuthentication()
	if err != nil {
		return nil, err
	}
	ca := NewChipAuthentication(p.cfg.Dispatcher, p.slotHandle(req), p.cfg.ExtendedLength)
	if err := ca.MSESetAT(ctx, info.Protocol, info.KeyID); err != nil {
		return nil, err
	}
	nonce, token, err := ca.GeneralAuthenticate(ctx, p.internal.EphemeralKey)
	if err != nil {
		return nil, err
	}
	cardSecurity, err := ca.ReadEFCardSecurity(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.advance(EventCADone); err != nil {
		return nil, err
	}

	out := BuildEAC2Output(cardSecurity, token, nonce)

	cancellation := dyncontext.MustPromise[struct{}](p.dyn, KeyProcessingCancellation)
	if _, cancelled := cancellation.DerefNonblocking(); cancelled {
		p.dyn.Put(KeyAuthenticationDone, false)
		return nil, NewError(KindUserCancelled, "Authentication canceled by the user.", nil)
	}
	if err := p.advance(EventEAC2Built); err != nil {
		return nil, err
	}
	p.dyn.Put(KeyAuthenticationDone, true)
	p.cancelActivation()
	slog.Info("EAC認証完了",
		append(p.cfg.Fields.SessionLogFields("EAC_AUTH_SUCCESS", p.session),
			"ca_protocol", info.Protocol.String(),
			"ef_card_security_len", len(cardSecurity),
		)...,
	)
	return &out, nil
}

// BuildEAC2Output はEAC2出力を組み立てる。
func BuildEAC2Output(cardSecurity, token, nonce []byte) EAC2Output {
	return EAC2Output{
		EFCardSecurity:      cardSecurity,
		AuthenticationToken: token,
		Nonce:               nonce,
	}
}
