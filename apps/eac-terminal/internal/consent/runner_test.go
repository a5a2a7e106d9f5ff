package consent

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/card"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/cvc"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/dyncontext"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/mocks"
)

var testSlot = []byte{0x0A, 0x0B}

func mustCHAT(t *testing.T, rights ...cvc.AccessRight) *cvc.CHAT {
	t.Helper()
	c, err := cvc.NewCHAT(cvc.RoleAuthenticationTerminal, rights...)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	return c
}

// newRequest は必須DG04・任意DG05のEACデータを持つ要求を生成する。
func newRequest(t *testing.T, pin eac.PasswordID) (eac.ConsentRequest, *dyncontext.Context) {
	t.Helper()
	required := mustCHAT(t, cvc.ReadDG04)
	data := &eac.EACData{
		RequiredCHAT:   required,
		OptionalCHAT:   mustCHAT(t, cvc.ReadDG05),
		RawDescription: []byte{0x30, 0x00},
		PinID:          pin,
	}
	if err := data.SetSelectedCHAT(required); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	steps := []eac.ConsentStep{eac.StepCVC, eac.StepCHAT, eac.StepPIN, eac.StepProcessing}
	if pin == eac.PasswordCAN {
		steps[2] = eac.StepCAN
	}
	dyn := dyncontext.New()
	return eac.NewConsentRequest(dyn, steps, data, testSlot), dyn
}

func paceResult(t *testing.T, dyn *dyncontext.Context) error {
	t.Helper()
	p := dyncontext.MustPromise[error](dyn, eac.KeyPACEResult)
	v, ok := p.DerefNonblocking()
	if !ok {
		t.Fatal("PACE結果が受け渡されていない")
	}
	return v
}

func TestAutoRunner_Success(t *testing.T) {
	tests := []struct {
		name           string
		acceptOptional bool
		wantDG05       bool
	}{
		{"必須のみ", false, false},
		{"任意も選択", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			est := mocks.NewMockChannelEstablisher(ctrl)
			req, dyn := newRequest(t, eac.PasswordPIN)

			est.EXPECT().
				EstablishChannel(gomock.Any(), testSlot, eac.PasswordPIN, gomock.Any(), []byte{0x30, 0x00}).
				DoAndReturn(func(_ context.Context, _ []byte, _ eac.PasswordID, chat *cvc.CHAT, _ []byte) (*eac.PACEOutput, error) {
					if chat.Has(cvc.ReadDG05) != tt.wantDG05 {
						t.Errorf("DG05 selected = %v, want %v", chat.Has(cvc.ReadDG05), tt.wantDG05)
					}
					return &eac.PACEOutput{RetryCounter: 3, EFCardAccess: []byte{0x31, 0x00}, CurrentCAR: []byte("DECVCAeID00002")}, nil
				})

			status := NewAutoRunner(est, tt.acceptOptional).Run(context.Background(), req)
			if status != eac.ConsentOK {
				t.Fatalf("status = %v, want OK", status)
			}
			if err := paceResult(t, dyn); err != nil {
				t.Errorf("PACE result = %v, want nil", err)
			}
			out := req.Data.PACEOutput()
			if out == nil || out.RetryCounter != 3 {
				t.Errorf("PACEOutput() = %+v", out)
			}
			if !req.Data.SelectedCHAT().Has(cvc.ReadDG04) {
				t.Error("必須権限が選択されていない")
			}
		})
	}
}

func TestAutoRunner_Failures(t *testing.T) {
	cancelled := eac.ErrorFromMinor(eac.MinorIFDCancellationByUser, "cancelled on reader")
	transport := errors.Join(card.ErrTransport, errors.New("gateway down"))

	tests := []struct {
		name       string
		err        error
		wantStatus eac.ConsentStatus
	}{
		{"リーダーで取消", cancelled, eac.ConsentCancelled},
		{"通信失敗", transport, eac.ConsentOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			est := mocks.NewMockChannelEstablisher(ctrl)
			req, dyn := newRequest(t, eac.PasswordCAN)

			est.EXPECT().
				EstablishChannel(gomock.Any(), testSlot, eac.PasswordCAN, gomock.Any(), gomock.Any()).
				Return(nil, tt.err)

			if status := NewAutoRunner(est, false).Run(context.Background(), req); status != tt.wantStatus {
				t.Errorf("status = %v, want %v", status, tt.wantStatus)
			}
			if got := paceResult(t, dyn); !errors.Is(got, tt.err) {
				t.Errorf("PACE result = %v, want %v", got, tt.err)
			}
		})
	}
}

func TestAutoRunner_Interrupted(t *testing.T) {
	ctrl := gomock.NewController(t)
	est := mocks.NewMockChannelEstablisher(ctrl)
	req, dyn := newRequest(t, eac.PasswordPIN)

	ctx, cancel := context.WithCancel(context.Background())
	est.EXPECT().
		EstablishChannel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []byte, eac.PasswordID, *cvc.CHAT, []byte) (*eac.PACEOutput, error) {
			cancel()
			return nil, card.ErrInterrupted
		})

	if status := NewAutoRunner(est, false).Run(ctx, req); status != eac.ConsentInterrupted {
		t.Errorf("status = %v, want INTERRUPTED", status)
	}
	if err := paceResult(t, dyn); !errors.Is(err, card.ErrInterrupted) {
		t.Errorf("PACE result = %v", err)
	}
}

func TestAutoRunner_ResultAlreadyDecided(t *testing.T) {
	ctrl := gomock.NewController(t)
	est := mocks.NewMockChannelEstablisher(ctrl)
	req, dyn := newRequest(t, eac.PasswordPIN)

	closed := eac.NewError(eac.KindInterrupted, "attempt closed", nil)
	if err := dyncontext.MustPromise[error](dyn, eac.KeyPACEResult).Deliver(closed); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	est.EXPECT().
		EstablishChannel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&eac.PACEOutput{EFCardAccess: []byte{0x31, 0x00}, CurrentCAR: []byte("X")}, nil)

	if status := NewAutoRunner(est, false).Run(context.Background(), req); status != eac.ConsentInterrupted {
		t.Errorf("status = %v, want INTERRUPTED", status)
	}
	if err := paceResult(t, dyn); err != closed {
		t.Errorf("PACE result = %v, want %v", err, closed)
	}
}

func TestAutoRunner_NoPasswordStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	est := mocks.NewMockChannelEstablisher(ctrl)
	req, dyn := newRequest(t, eac.PasswordPIN)
	req.Steps = []eac.ConsentStep{eac.StepCVC, eac.StepCHAT}

	if status := NewAutoRunner(est, false).Run(context.Background(), req); status != eac.ConsentOK {
		t.Errorf("status = %v", status)
	}
	var e *eac.Error
	if err := paceResult(t, dyn); !errors.As(err, &e) || e.Kind != eac.KindInternal {
		t.Errorf("PACE result = %v, want internal error", err)
	}
}
