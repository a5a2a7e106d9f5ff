package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteError(c, Conflict("duplicate card entry"))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if ct := w.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("Content-Type = %q, want %q", ct, ContentType)
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	AbortWithError(c, BadRequest("bad"))

	if !c.IsAborted() {
		t.Error("context should be aborted")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProblemFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.NewValidationError("f", "m"), http.StatusBadRequest},
		{"session not found", fmt.Errorf("lookup: %w", apperr.ErrSessionNotFound), http.StatusNotFound},
		{"card not found", apperr.ErrCardNotFound, http.StatusNotFound},
		{"duplicate card", apperr.ErrDuplicateCardEntry, http.StatusConflict},
		{"gateway", fmt.Errorf("%w: down", apperr.ErrIFDGateway), http.StatusBadGateway},
		{"token exhausted", apperr.ErrTokenSpaceExhausted, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProblemFromError(tt.err).Status; got != tt.want {
				t.Errorf("Status = %d, want %d", got, tt.want)
			}
		})
	}
}
