package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/dyncontext"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/eac"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/registry"
	"github.com/oyaguma3/eid-eac-terminal-poc/apps/eac-terminal/internal/trust"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/model"
)

// HandleCreateSession はPOST /api/v1/sessions のハンドラー。
func (h *Handler) HandleCreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeProblem(c, "SESSION_CREATE_ERR", apperr.NewValidationError("body", err.Error()))
			return
		}
	}

	ctx := requestContext(c)
	entry, err := h.reg.CreateSession(ctx)
	if err != nil {
		h.writeProblem(c, "SESSION_CREATE_ERR", err)
		return
	}
	if err := h.startProtocol(entry, req.TrustInputs()); err != nil {
		h.reg.DestroySession(ctx, entry.Token)
		h.writeProblem(c, "SESSION_CREATE_ERR", err)
		return
	}

	c.JSON(http.StatusCreated, h.sessionResponse(entry))
}

// startProtocol はチェック入力と検証器を受け渡した新しいProtocolをセッションに設定する。
func (h *Handler) startProtocol(entry *registry.StateEntry, in trust.Inputs) error {
	dyn := dyncontext.New()
	dyn.Put(eac.KeyTrustInputs, in)
	if cc := entry.ConnectedCard(); cc != nil {
		dyn.Put(eac.KeyConnectionHandle, cc.SlotHandle)
	}
	if err := dyncontext.MustPromise[eac.SchemaValidator](dyn, eac.KeySchemaValidator).Deliver(h.validator); err != nil {
		return err
	}
	entry.SetProtocol(eac.NewProtocol(entry.Token, dyn, h.protocol))
	return nil
}

// HandleGetSession はGET /api/v1/sessions/:session のハンドラー。
func (h *Handler) HandleGetSession(c *gin.Context) {
	entry, err := h.reg.GetSession(c.Param("session"))
	if err != nil {
		h.writeProblem(c, "SESSION_GET_ERR", err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(entry))
}

// HandleDeleteSession はDELETE /api/v1/sessions/:session のハンドラー。
func (h *Handler) HandleDeleteSession(c *gin.Context) {
	if !h.reg.DestroySession(requestContext(c), c.Param("session")) {
		h.writeProblem(c, "SESSION_DELETE_ERR", apperr.ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleCancel はPOST /api/v1/sessions/:session/cancel のハンドラー。
// 処理中の取消を受け付け、次のEAC2完了時に取消結果として返す。
func (h *Handler) HandleCancel(c *gin.Context) {
	entry, err := h.reg.GetSession(c.Param("session"))
	if err != nil {
		h.writeProblem(c, "SESSION_CANCEL_ERR", err)
		return
	}
	if p := entry.Protocol(); p != nil {
		p.CancelProcessing()
	}
	c.Status(http.StatusAccepted)
}

// HandleConnect はPOST /api/v1/sessions/:session/connect のハンドラー。
// 終了済みの試行がある場合は同じチェック入力で新しい試行を開始する。
func (h *Handler) HandleConnect(c *gin.Context) {
	ctx := requestContext(c)
	entry, err := h.reg.GetSession(c.Param("session"))
	if err != nil {
		h.writeProblem(c, "SESSION_CONNECT_ERR", err)
		return
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeProblem(c, "SESSION_CONNECT_ERR", apperr.NewValidationError("body", err.Error()))
		return
	}
	card, ok := h.reg.GetCardEntry(req.ContextHandle, req.IFDName, req.SlotIndex)
	if !ok {
		h.writeProblem(c, "SESSION_CONNECT_ERR", fmt.Errorf("%w: %s slot %d", apperr.ErrCardNotFound, req.IFDName, req.SlotIndex))
		return
	}
	entry.SetConnectedCard(req.SlotHandle, card)

	p := entry.Protocol()
	if p == nil || eac.IsTerminal(p.State()) {
		var in trust.Inputs
		if p != nil {
			in, _, _ = dyncontext.Value[trust.Inputs](p.Context(), eac.KeyTrustInputs)
		}
		if err := h.startProtocol(entry, in); err != nil {
			h.writeProblem(c, "SESSION_CONNECT_ERR", err)
			return
		}
	} else {
		p.Context().Put(eac.KeyConnectionHandle, req.SlotHandle)
	}

	slog.Info("カード接続",
		append(h.fields.SessionLogFields("SESSION_CONNECTED", entry.Token),
			h.fields.WithSlotHandle(req.SlotHandle),
			"ifd_name", req.IFDName,
			"slot_index", req.SlotIndex,
		)...,
	)
	h.reg.RecordStage(ctx, entry, model.StageConnected, "")
	c.JSON(http.StatusOK, h.sessionResponse(entry))
}

// HandleDIDAuthenticate はPOST /api/v1/sessions/:session/did-authenticate のハンドラー。
// 認証結果はエンベロープ内のresultで返し、HTTPステータスは200とする。
func (h *Handler) HandleDIDAuthenticate(c *gin.Context) {
	ctx := requestContext(c)
	entry, err := h.reg.GetSession(c.Param("session"))
	if err != nil {
		h.writeProblem(c, "EAC_REQUEST_ERR", err)
		return
	}
	if entry.ConnectedCard() == nil {
		h.writeProblem(c, "EAC_REQUEST_ERR", apperr.ErrNoCardConnected)
		return
	}
	p := entry.Protocol()
	if p == nil {
		h.writeProblem(c, "EAC_REQUEST_ERR", fmt.Errorf("%w: no authentication attempt", apperr.ErrNoCardConnected))
		return
	}

	var req eac.DIDAuthenticate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeProblem(c, "EAC_REQUEST_ERR", apperr.NewValidationError("body", err.Error()))
		return
	}

	resp := p.Authenticate(ctx, &req)
	minor := ""
	if !resp.Result.IsOK() {
		minor = resp.Result.Minor
	}
	h.reg.RecordStage(ctx, entry, stageFor(p.State()), minor)
	c.JSON(http.StatusOK, resp)
}

// stageFor は状態をジャーナル上の段階に変換する。
func stageFor(s eac.State) model.Stage {
	switch s {
	case eac.StateEAC1Complete:
		return model.StageEAC1Complete
	case eac.StateAwaitAdditionalInput:
		return model.StageAwaitAdditional
	case eac.StateSuccess:
		return model.StageSuccess
	case eac.StateFailure:
		return model.StageFailure
	case eac.StateCancelledByUser:
		return model.StageCancelled
	default:
		return model.StageConnected
	}
}

func (h *Handler) sessionResponse(entry *registry.StateEntry) *SessionResponse {
	resp := &SessionResponse{Session: entry.Token, CreatedAt: entry.CreatedAt}
	if p := entry.Protocol(); p != nil {
		resp.State = string(p.State())
	}
	if cc := entry.ConnectedCard(); cc != nil {
		resp.Card = newCardResponse(cc.Card)
	}
	return resp
}
