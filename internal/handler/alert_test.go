package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/trace-ops/backend/internal/client"
	"github.com/trace-ops/backend/internal/model"
	"github.com/trace-ops/backend/internal/service"
	"github.com/trace-ops/backend/internal/store"
)

type fakeLedger struct {
	alerts []model.Alert
	err    error
	doc    map[string]any
	docErr error
}

func (f *fakeLedger) AllDocs(ctx context.Context) ([]model.Alert, error) {
	return f.alerts, f.err
}

func (f *fakeLedger) GetDocument(ctx context.Context, id string) (map[string]any, error) {
	if f.docErr != nil {
		return nil, f.docErr
	}
	return f.doc, nil
}

// 역할별 토큰을 흉내내는 authorizer: "Bearer <role>"을 그대로 역할로 사용
type roleAuthorizer struct{}

func (roleAuthorizer) Authorize(ctx context.Context, rawToken string, requiredRoles ...string) (*model.AuthClaims, error) {
	if rawToken == "" {
		return nil, service.ErrMissingCredential
	}
	claims := &model.AuthClaims{Subject: "user-" + rawToken, Roles: []string{rawToken}}
	if !claims.HasAnyRole(requiredRoles...) {
		return nil, service.ErrForbidden
	}
	return claims, nil
}

func newTestRouter(ledger *fakeLedger) *gin.Engine {
	gin.SetMode(gin.TestMode)

	alertService := service.NewAlertService(store.NewAlertStore(), ledger)
	alertHandler := NewAlertHandler(alertService)
	auth := roleAuthorizer{}

	router := gin.New()
	router.GET("/alerts", alertHandler.List)
	router.POST("/alerts", AuthMiddleware(auth, "operator", "decider"), alertHandler.Create)
	router.POST("/analyze/:alertId", AuthMiddleware(auth, "analyst"), alertHandler.Analyze)
	router.PUT("/internal/update_decision/:alertId", AuthMiddleware(auth, "decider"), alertHandler.UpdateDecision)
	router.GET("/ledger/verify/:txId", AuthMiddleware(auth, "analyst", "decider"), alertHandler.VerifyLedger)
	return router
}

func doJSON(router *gin.Engine, method, path, role string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAlertLifecycleScenario(t *testing.T) {
	router := newTestRouter(&fakeLedger{})

	// 1. operator가 경보 생성
	rec := doJSON(router, http.MethodPost, "/alerts", "operator", model.CreateAlertRequest{
		Type: "intrusion", Zone: "north-gate", Criticality: "high",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var created model.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse created alert: %v", err)
	}
	if len(created.ID) < 8 || created.Status != model.StatusNew {
		t.Fatalf("unexpected created alert: %+v", created)
	}

	// 2. analyst가 분석 실행
	rec = doJSON(router, http.MethodPost, "/analyze/"+created.ID, "analyst", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var analyzed model.Alert
	_ = json.Unmarshal(rec.Body.Bytes(), &analyzed)
	if analyzed.Status != model.StatusAnalyzed || analyzed.AIScore == nil || *analyzed.AIScore < 40 || *analyzed.AIScore > 99 {
		t.Fatalf("unexpected analyzed alert: %+v", analyzed)
	}

	// 3. decider가 결정 기록
	rec = doJSON(router, http.MethodPut, "/internal/update_decision/"+created.ID, "decider", model.DecisionRequest{
		Decision: "escalate", TxHash: "abc123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var decided model.Alert
	_ = json.Unmarshal(rec.Body.Bytes(), &decided)
	if decided.Status != model.StatusDecided || decided.Decision != "escalate" || decided.TxHash != "abc123" {
		t.Fatalf("unexpected decided alert: %+v", decided)
	}
	if decided.DecidedBy != "user-decider" {
		t.Fatalf("expected acting subject recorded, got %q", decided.DecidedBy)
	}
}

func TestCreateAlertRoleChecks(t *testing.T) {
	router := newTestRouter(&fakeLedger{})
	body := model.CreateAlertRequest{Type: "intrusion", Zone: "north-gate", Criticality: "high"}

	if rec := doJSON(router, http.MethodPost, "/alerts", "analyst", body); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for analyst, got %d", rec.Code)
	}
	if rec := doJSON(router, http.MethodPost, "/alerts", "", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := doJSON(router, http.MethodPost, "/alerts", "decider", body); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for decider, got %d", rec.Code)
	}
}

func TestCreateAlertInvalidPayload(t *testing.T) {
	router := newTestRouter(&fakeLedger{})
	if rec := doJSON(router, http.MethodPost, "/alerts", "operator", map[string]string{"type": "intrusion"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete payload, got %d", rec.Code)
	}
}

func TestAnalyzeUnknownAlert(t *testing.T) {
	router := newTestRouter(&fakeLedger{})
	if rec := doJSON(router, http.MethodPost, "/analyze/does-not-exist", "analyst", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAnalyzeAfterDecisionConflicts(t *testing.T) {
	router := newTestRouter(&fakeLedger{})

	rec := doJSON(router, http.MethodPost, "/alerts", "operator", model.CreateAlertRequest{
		Type: "intrusion", Zone: "north-gate", Criticality: "high",
	})
	var created model.Alert
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	doJSON(router, http.MethodPut, "/internal/update_decision/"+created.ID, "decider", model.DecisionRequest{
		Decision: "dismiss", TxHash: "def456",
	})

	if rec := doJSON(router, http.MethodPost, "/analyze/"+created.ID, "analyst", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for analysis after decision, got %d", rec.Code)
	}
}

func TestUpdateDecisionValidation(t *testing.T) {
	router := newTestRouter(&fakeLedger{})

	rec := doJSON(router, http.MethodPost, "/alerts", "operator", model.CreateAlertRequest{
		Type: "intrusion", Zone: "north-gate", Criticality: "high",
	})
	var created model.Alert
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	if rec := doJSON(router, http.MethodPut, "/internal/update_decision/"+created.ID, "decider", map[string]string{"decision": ""}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty decision, got %d", rec.Code)
	}
	if rec := doJSON(router, http.MethodPut, "/internal/update_decision/missing", "decider", model.DecisionRequest{
		Decision: "escalate", TxHash: "abc",
	}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestListSourceTagging(t *testing.T) {
	// 원장이 비어있으면 로컬 캐시로 폴백
	router := newTestRouter(&fakeLedger{alerts: []model.Alert{}})
	doJSON(router, http.MethodPost, "/alerts", "operator", model.CreateAlertRequest{
		Type: "intrusion", Zone: "north-gate", Criticality: "high",
	})

	rec := doJSON(router, http.MethodGet, "/alerts", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed model.AlertListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &listed)
	if listed.Source != service.SourceCacheLocal || len(listed.Data) != 1 {
		t.Fatalf("expected local fallback with 1 alert, got %+v", listed)
	}

	// 원장에 문서가 있으면 원장이 우선
	router = newTestRouter(&fakeLedger{alerts: []model.Alert{{ID: "ledger-1"}}})
	rec = doJSON(router, http.MethodGet, "/alerts", "", nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &listed)
	if listed.Source != service.SourceLedger || len(listed.Data) != 1 || listed.Data[0].ID != "ledger-1" {
		t.Fatalf("expected ledger view, got %+v", listed)
	}
}

func TestVerifyLedgerStatuses(t *testing.T) {
	router := newTestRouter(&fakeLedger{doc: map[string]any{"_id": "tx-001", "ledgerHash": "deadbeef"}})
	rec := doJSON(router, http.MethodGet, "/ledger/verify/tx-001", "analyst", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	router = newTestRouter(&fakeLedger{docErr: client.ErrDocNotFound})
	if rec := doJSON(router, http.MethodGet, "/ledger/verify/tx-missing", "decider", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	router = newTestRouter(&fakeLedger{docErr: client.ErrLedgerUnavailable})
	if rec := doJSON(router, http.MethodGet, "/ledger/verify/tx-001", "decider", nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on ledger outage, got %d", rec.Code)
	}

	if rec := doJSON(router, http.MethodGet, "/ledger/verify/tx-001", "operator", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator, got %d", rec.Code)
	}
}
