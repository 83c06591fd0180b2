package handler

import (
	"net/http"

	"github.com/atelier-api/internal/application/project"
	"github.com/go-chi/chi/v5"
)

// ProjectHandler serves designer projects, their files and requirements.
type ProjectHandler struct {
	svc project.Service
}

func NewProjectHandler(svc project.Service) *ProjectHandler { return &ProjectHandler{svc: svc} }

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req project.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req project.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ProjectHandler) Close(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req project.CloseRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Close(r.Context(), chi.URLParam(r, "id"), uid, req.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteFile(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "fileID"), uid); err != nil {
		httpError(w, err)
		return
	}
	writeDeleted(w)
}

func (h *ProjectHandler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListRequirements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *ProjectHandler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req project.CreateRequirementRequest
	if !decode(w, r, &req) {
		return
	}
	pr, err := h.svc.CreateRequirement(r.Context(), chi.URLParam(r, "id"), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pr)
}

func (h *ProjectHandler) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	var req project.UpdateRequirementRequest
	if !decode(w, r, &req) {
		return
	}
	pr, err := h.svc.UpdateRequirement(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "reqID"), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (h *ProjectHandler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteRequirement(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "reqID"), uid); err != nil {
		httpError(w, err)
		return
	}
	writeDeleted(w)
}

func (h *ProjectHandler) ApproveRequirement(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	pr, err := h.svc.ApproveRequirement(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "reqID"), uid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}
