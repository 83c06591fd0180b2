package handler

import (
	"net/http"

	"github.com/atelier-api/internal/application/review"
	"github.com/atelier-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	svc review.Service
}

func NewReviewHandler(svc review.Service) *ReviewHandler { return &ReviewHandler{svc: svc} }

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	target := domain.ReviewTarget(chi.URLParam(r, "targetType"))
	reviews, err := h.svc.List(r.Context(), target, chi.URLParam(r, "targetID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req review.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	rv, err := h.svc.Create(r.Context(), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), uid); err != nil {
		httpError(w, err)
		return
	}
	writeDeleted(w)
}
