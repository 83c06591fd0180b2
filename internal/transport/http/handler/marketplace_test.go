package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelier-api/internal/application/bid"
	"github.com/atelier-api/internal/application/portfolio"
	"github.com/atelier-api/internal/application/project"
	"github.com/atelier-api/internal/application/review"
	"github.com/atelier-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withParams attaches chi URL params, as the router would.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeStatus(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var got map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	return got["status"]
}

func TestProjectCreate(t *testing.T) {
	svc := &mockProjectSvc{}
	svc.On("Create", mock.Anything, "u1", project.CreateRequest{Title: "Summer dress"}).
		Return(&domain.Project{ID: "p1", Title: "Summer dress", Status: domain.ProjectOpen}, nil)
	h := NewProjectHandler(svc)
	rr := httptest.NewRecorder()
	h.Create(rr, withUser(jsonReq(t, http.MethodPost, "/v1/projects", map[string]string{"title": "Summer dress"}), "u1"))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"OPEN"`)
	svc.AssertExpectations(t)
}

func TestProjectCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"description": "x"}},
		{"negative budget", map[string]interface{}{"title": "x", "budget": -1}},
		{"unknown status", map[string]interface{}{"title": "x", "status": "ARCHIVED"}},
		{"bad file url", map[string]interface{}{"title": "x", "files": []map[string]string{{"file_url": "nope"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockProjectSvc{}
			rr := httptest.NewRecorder()
			NewProjectHandler(svc).Create(rr, withUser(jsonReq(t, http.MethodPost, "/v1/projects", tt.body), "u1"))
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProjectCreate_MissingClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	NewProjectHandler(&mockProjectSvc{}).Create(rr, jsonReq(t, http.MethodPost, "/v1/projects", map[string]string{"title": "x"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProjectGet_UsesPathID(t *testing.T) {
	svc := &mockProjectSvc{}
	svc.On("Get", mock.Anything, "p1").Return(&domain.ProjectDetail{
		Project: &domain.Project{ID: "p1"},
		Reviews: []domain.Review{{ID: "r1", Rating: 4}},
	}, nil)
	rr := httptest.NewRecorder()
	NewProjectHandler(svc).Get(rr, withParams(httptest.NewRequest(http.MethodGet, "/v1/projects/p1", nil), "id", "p1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "p1", got["id"])
	assert.Len(t, got["reviews"], 1)
}

func TestProjectDelete(t *testing.T) {
	svc := &mockProjectSvc{}
	svc.On("Delete", mock.Anything, "p1", "u1").Return(nil)
	svc.On("Delete", mock.Anything, "p1", "u2").Return(fmt.Errorf("only the owner can delete this project: %w", domain.ErrForbidden))
	h := NewProjectHandler(svc)

	rr := httptest.NewRecorder()
	h.Delete(rr, withParams(withUser(httptest.NewRequest(http.MethodDelete, "/v1/projects/p1", nil), "u1"), "id", "p1"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "deleted", decodeStatus(t, rr))

	rr = httptest.NewRecorder()
	h.Delete(rr, withParams(withUser(httptest.NewRequest(http.MethodDelete, "/v1/projects/p1", nil), "u2"), "id", "p1"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestProjectClose_RejectsNonTerminalStatus(t *testing.T) {
	svc := &mockProjectSvc{}
	rr := httptest.NewRecorder()
	req := jsonReq(t, http.MethodPost, "/v1/projects/p1/close", map[string]string{"status": "OPEN"})
	NewProjectHandler(svc).Close(rr, withParams(withUser(req, "u1"), "id", "p1"))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectCreateRequirement_NotOpen(t *testing.T) {
	svc := &mockProjectSvc{}
	svc.On("CreateRequirement", mock.Anything, "p1", "u1", mock.Anything).
		Return(nil, fmt.Errorf("project requirements can only be added while status is OPEN: %w", domain.ErrBadRequest))
	rr := httptest.NewRecorder()
	req := jsonReq(t, http.MethodPost, "/v1/projects/p1/requirements", map[string]interface{}{
		"content": map[string]interface{}{"fabric": "linen"},
	})
	NewProjectHandler(svc).CreateRequirement(rr, withParams(withUser(req, "u1"), "id", "p1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeEnvelope(t, rr).Error, "status is OPEN")
}

func TestProjectApproveRequirement(t *testing.T) {
	svc := &mockProjectSvc{}
	svc.On("ApproveRequirement", mock.Anything, "p1", "r1", "tailor").
		Return(&domain.ProjectRequirement{ID: "r1", TailorApproved: true}, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/projects/p1/requirements/r1/approve", nil)
	NewProjectHandler(svc).ApproveRequirement(rr, withParams(withUser(req, "tailor"), "id", "p1", "reqID", "r1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"tailor_approved":true`)
}

func TestBidCreate_Conflict(t *testing.T) {
	svc := &mockBidSvc{}
	svc.On("Create", mock.Anything, "p1", "tailor", bid.CreateRequest{Amount: 150.5}).
		Return(nil, fmt.Errorf("bid already exists: %w", domain.ErrConflict))
	rr := httptest.NewRecorder()
	req := jsonReq(t, http.MethodPost, "/v1/projects/p1/bids", map[string]interface{}{"amount": 150.5})
	NewBidHandler(svc).Create(rr, withParams(withUser(req, "tailor"), "id", "p1"))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestBidCreate_RequiresPositiveAmount(t *testing.T) {
	svc := &mockBidSvc{}
	rr := httptest.NewRecorder()
	req := jsonReq(t, http.MethodPost, "/v1/projects/p1/bids", map[string]interface{}{"amount": 0})
	NewBidHandler(svc).Create(rr, withParams(withUser(req, "tailor"), "id", "p1"))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestBidDecide(t *testing.T) {
	svc := &mockBidSvc{}
	svc.On("Decide", mock.Anything, "b1", "designer", domain.BidApproved).
		Return(&domain.Bid{ID: "b1", Status: domain.BidApproved}, nil)
	h := NewBidHandler(svc)

	rr := httptest.NewRecorder()
	req := jsonReq(t, http.MethodPatch, "/v1/bids/b1/decision", map[string]string{"decision": "APPROVED"})
	h.Decide(rr, withParams(withUser(req, "designer"), "bidID", "b1"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	req = jsonReq(t, http.MethodPatch, "/v1/bids/b1/decision", map[string]string{"decision": "PENDING"})
	h.Decide(rr, withParams(withUser(req, "designer"), "bidID", "b1"))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNumberOfCalls(t, "Decide", 1)
}

func TestBidWithdraw(t *testing.T) {
	svc := &mockBidSvc{}
	svc.On("Withdraw", mock.Anything, "b1", "tailor").Return(nil)
	rr := httptest.NewRecorder()
	NewBidHandler(svc).Withdraw(rr, withParams(withUser(httptest.NewRequest(http.MethodDelete, "/v1/bids/b1", nil), "tailor"), "bidID", "b1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "deleted", decodeStatus(t, rr))
}

func TestReviewList_UnknownTarget(t *testing.T) {
	svc := &mockReviewSvc{}
	svc.On("List", mock.Anything, domain.ReviewTarget("shop"), "x").
		Return(nil, fmt.Errorf("invalid target type: %w", domain.ErrNotFound))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/reviews/shop/x", nil)
	NewReviewHandler(svc).List(rr, withParams(req, "targetType", "shop", "targetID", "x"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReviewCreate(t *testing.T) {
	svc := &mockReviewSvc{}
	want := review.CreateRequest{TargetType: domain.TargetUser, TargetID: "u2", Rating: 5, Comment: "Great"}
	svc.On("Create", mock.Anything, "u1", want).Return(&domain.Review{ID: "r1", Rating: 5}, nil)
	h := NewReviewHandler(svc)

	rr := httptest.NewRecorder()
	h.Create(rr, withUser(jsonReq(t, http.MethodPost, "/v1/reviews", map[string]interface{}{
		"target_type": "user", "target_id": "u2", "rating": 5, "comment": "Great",
	}), "u1"))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.Create(rr, withUser(jsonReq(t, http.MethodPost, "/v1/reviews", map[string]interface{}{
		"target_type": "user", "target_id": "u2", "rating": 6,
	}), "u1"))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestPortfolioUpsert(t *testing.T) {
	svc := &mockPortfolioSvc{}
	title := "Summer"
	want := portfolio.UpsertRequest{
		Title:  &title,
		Images: []portfolio.ImageInput{{ImageURL: "https://cdn.test/1.png"}},
	}
	svc.On("Upsert", mock.Anything, "u1", want).
		Return(&domain.Portfolio{ID: "pf1", Title: title, Images: []domain.PortfolioImage{{ID: "i1", IsPrimary: true}}}, nil)
	rr := httptest.NewRecorder()
	NewPortfolioHandler(svc).Upsert(rr, withUser(jsonReq(t, http.MethodPost, "/v1/portfolio", map[string]interface{}{
		"title":  "Summer",
		"images": []map[string]string{{"image_url": "https://cdn.test/1.png"}},
	}), "u1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"is_primary":true`)
	svc.AssertExpectations(t)
}

func TestPortfolioGet_Missing(t *testing.T) {
	svc := &mockPortfolioSvc{}
	svc.On("Get", mock.Anything, "u1").Return(nil, fmt.Errorf("portfolio not found: %w", domain.ErrNotFound))
	rr := httptest.NewRecorder()
	NewPortfolioHandler(svc).Get(rr, withUser(httptest.NewRequest(http.MethodGet, "/v1/portfolio", nil), "u1"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
