package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/disputedesk/disputedesk-backend/api/middleware"
	"github.com/disputedesk/disputedesk-backend/internal/disputes"
	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

type testDisputesService struct {
	listFn     func(ctx context.Context, limit int) ([]disputes.Dispute, error)
	getFn      func(ctx context.Context, id string) (*disputes.Dispute, error)
	templateFn func(ctx context.Context, disputeID string) (*disputes.Template, error)
}

func (s *testDisputesService) ListDisputes(ctx context.Context, limit int) ([]disputes.Dispute, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit)
	}
	return nil, nil
}

func (s *testDisputesService) GetDispute(ctx context.Context, id string) (*disputes.Dispute, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, nil
}

func (s *testDisputesService) GetTemplate(ctx context.Context, disputeID string) (*disputes.Template, error) {
	if s.templateFn != nil {
		return s.templateFn(ctx, disputeID)
	}
	return nil, nil
}

type testExplanationsService struct {
	getFn  func(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error)
	saveFn func(ctx context.Context, userID, disputeID, body string) (*models.DisputeExplanation, error)
}

func (s *testExplanationsService) GetExplanation(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID, disputeID)
	}
	return nil, nil
}

func (s *testExplanationsService) SaveExplanation(ctx context.Context, userID, disputeID, body string) (*models.DisputeExplanation, error) {
	if s.saveFn != nil {
		return s.saveFn(ctx, userID, disputeID, body)
	}
	return nil, nil
}

func TestListDisputesPassesLimit(t *testing.T) {
	var gotLimit int
	svc := &testDisputesService{
		listFn: func(ctx context.Context, limit int) ([]disputes.Dispute, error) {
			gotLimit = limit
			return []disputes.Dispute{{ID: "dp_1"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/disputes?limit=10", nil)
	resp := httptest.NewRecorder()
	ListDisputes(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotLimit != 10 {
		t.Fatalf("expected limit 10 got %d", gotLimit)
	}
	var envelope struct {
		Data []disputes.Dispute `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ID != "dp_1" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestListDisputesRejectsBadLimit(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/disputes?limit="+raw, nil)
		resp := httptest.NewRecorder()
		ListDisputes(&testDisputesService{}, testLogger())(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: expected 400 got %d", raw, resp.Code)
		}
	}
}

func TestGetDisputeNotFound(t *testing.T) {
	svc := &testDisputesService{
		getFn: func(ctx context.Context, id string) (*disputes.Dispute, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispute not found")
		},
	}

	req := addRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/disputes/dp_missing", nil), "id", "dp_missing")
	resp := httptest.NewRecorder()
	GetDispute(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %q", envelope.Code)
	}
	if envelope.Error != "dispute not found" {
		t.Fatalf("unexpected message %q", envelope.Error)
	}
}

func TestGetDisputeTemplateSuccess(t *testing.T) {
	svc := &testDisputesService{
		templateFn: func(ctx context.Context, disputeID string) (*disputes.Template, error) {
			if disputeID != "dp_1" {
				t.Fatalf("unexpected dispute %q", disputeID)
			}
			return &disputes.Template{Reason: "fraudulent", Required: []string{"Proof of delivery or service"}}, nil
		},
	}

	req := addRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/disputes/dp_1/template", nil), "id", "dp_1")
	resp := httptest.NewRecorder()
	GetDisputeTemplate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data disputes.Template `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Reason != "fraudulent" {
		t.Fatalf("unexpected reason %q", envelope.Data.Reason)
	}
}

func TestPutExplanationSavesBody(t *testing.T) {
	svc := &testExplanationsService{
		saveFn: func(ctx context.Context, userID, disputeID, body string) (*models.DisputeExplanation, error) {
			if userID != "user-1" || disputeID != "dp_1" {
				t.Fatalf("unexpected scope %q/%q", userID, disputeID)
			}
			return &models.DisputeExplanation{UserID: userID, DisputeID: disputeID, Body: body}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/disputes/dp_1/explanation", strings.NewReader(`{"body":"the customer received the goods"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withUser(addRouteParam(req, "id", "dp_1"), "user-1")
	resp := httptest.NewRecorder()
	PutExplanation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data models.DisputeExplanation `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Body != "the customer received the goods" {
		t.Fatalf("unexpected body %q", envelope.Data.Body)
	}
}

func TestPutExplanationRejectsMissingBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/disputes/dp_1/explanation", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = withUser(addRouteParam(req, "id", "dp_1"), "user-1")
	resp := httptest.NewRecorder()
	PutExplanation(&testExplanationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetExplanationMissingIsNullPayload(t *testing.T) {
	svc := &testExplanationsService{
		getFn: func(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error) {
			return nil, nil
		},
	}

	req := withUser(addRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/disputes/dp_1/explanation", nil), "id", "dp_1"), "user-1")
	resp := httptest.NewRecorder()
	GetExplanation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if string(envelope.Data) != "null" {
		t.Fatalf("expected null payload, got %s", envelope.Data)
	}
}

func TestGetExplanationSuccess(t *testing.T) {
	svc := &testExplanationsService{
		getFn: func(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error) {
			return &models.DisputeExplanation{UserID: userID, DisputeID: disputeID, Body: "saved text"}, nil
		},
	}

	req := withUser(addRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/disputes/dp_1/explanation", nil), "id", "dp_1"), "user-1")
	resp := httptest.NewRecorder()
	GetExplanation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
