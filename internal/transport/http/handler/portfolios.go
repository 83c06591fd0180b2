package handler

import (
	"net/http"

	"github.com/atelier-api/internal/application/portfolio"
)

// PortfolioHandler serves the caller's own portfolio.
type PortfolioHandler struct {
	svc portfolio.Service
}

func NewPortfolioHandler(svc portfolio.Service) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), uid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PortfolioHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req portfolio.UpsertRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Upsert(r.Context(), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), uid); err != nil {
		httpError(w, err)
		return
	}
	writeDeleted(w)
}
