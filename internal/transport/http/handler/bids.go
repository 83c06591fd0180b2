package handler

import (
	"net/http"

	"github.com/atelier-api/internal/application/bid"
	"github.com/go-chi/chi/v5"
)

type BidHandler struct {
	svc bid.Service
}

func NewBidHandler(svc bid.Service) *BidHandler { return &BidHandler{svc: svc} }

// Create places the caller's bid on the project in the path.
func (h *BidHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req bid.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.svc.Create(r.Context(), chi.URLParam(r, "id"), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BidHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	bids, err := h.svc.ListForProject(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

func (h *BidHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "bidID"), uid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BidHandler) Decide(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req bid.DecisionRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.svc.Decide(r.Context(), chi.URLParam(r, "bidID"), uid, req.Decision)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BidHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Withdraw(r.Context(), chi.URLParam(r, "bidID"), uid); err != nil {
		httpError(w, err)
		return
	}
	writeDeleted(w)
}
