package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
)

// HandleListCards はGET /api/v1/cards のハンドラー。
func (h *Handler) HandleListCards(c *gin.Context) {
	entries := h.reg.ListCardEntries()
	resp := make([]*CardResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, newCardResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAddCard はPOST /api/v1/cards のハンドラー。
func (h *Handler) HandleAddCard(c *gin.Context) {
	var req AddCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeProblem(c, "CARD_ADD_ERR", apperr.NewValidationError("body", err.Error()))
		return
	}
	entry, err := h.reg.AddCard(requestContext(c), req.ContextHandle, req.IFDName, req.SlotIndex, req.CardType)
	if err != nil {
		h.writeProblem(c, "CARD_ADD_ERR", err)
		return
	}
	slog.Info("カード認識",
		"trace_id", c.GetString(TraceIDKey),
		"event_id", "CARD_ADDED",
		"ifd_name", req.IFDName,
		"slot_index", req.SlotIndex,
		"card_type", req.CardType,
	)
	c.JSON(http.StatusCreated, newCardResponse(entry))
}

// HandleRemoveCard はDELETE /api/v1/cards のハンドラー。
// slot_index省略時はリーダーの切断として、そのリーダーのカードをすべて削除する。
func (h *Handler) HandleRemoveCard(c *gin.Context) {
	var req RemoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeProblem(c, "CARD_REMOVE_ERR", apperr.NewValidationError("body", err.Error()))
		return
	}

	ctx := requestContext(c)
	removed := 0
	if req.SlotIndex == nil {
		removed = h.reg.RemoveTerminal(ctx, req.ContextHandle, req.IFDName)
	} else if h.reg.RemoveCard(ctx, req.ContextHandle, req.IFDName, *req.SlotIndex) {
		removed = 1
	}
	if removed == 0 {
		h.writeProblem(c, "CARD_REMOVE_ERR", fmt.Errorf("%w: %s", apperr.ErrCardNotFound, req.IFDName))
		return
	}
	slog.Info("カード削除",
		"trace_id", c.GetString(TraceIDKey),
		"event_id", "CARD_REMOVED",
		"ifd_name", req.IFDName,
		"removed", removed,
	)
	c.JSON(http.StatusOK, RemoveCardResponse{Removed: removed})
}
