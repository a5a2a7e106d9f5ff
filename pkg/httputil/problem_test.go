package httputil

import (
	"net/http"
	"testing"
)

func TestNewProblemDetail(t *testing.T) {
	p := NewProblemDetail(http.StatusBadRequest, "slot_index must not be negative")

	if p.Type != "about:blank" {
		t.Errorf("Type = %q, want %q", p.Type, "about:blank")
	}
	if p.Title != "Bad Request" {
		t.Errorf("Title = %q, want %q", p.Title, "Bad Request")
	}
	if p.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", p.Status, http.StatusBadRequest)
	}
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		name  string
		p     *ProblemDetail
		want  int
		title string
	}{
		{"BadRequest", BadRequest("x"), http.StatusBadRequest, "Bad Request"},
		{"NotFound", NotFound("x"), http.StatusNotFound, "Not Found"},
		{"Conflict", Conflict("x"), http.StatusConflict, "Conflict"},
		{"InternalServerError", InternalServerError("x"), http.StatusInternalServerError, "Internal Server Error"},
		{"BadGateway", BadGateway("x"), http.StatusBadGateway, "Bad Gateway"},
		{"ServiceUnavailable", ServiceUnavailable("x"), http.StatusServiceUnavailable, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Status != tt.want {
				t.Errorf("Status = %d, want %d", tt.p.Status, tt.want)
			}
			if tt.p.Title != tt.title {
				t.Errorf("Title = %q, want %q", tt.p.Title, tt.title)
			}
		})
	}
}
