// 경보 라이프사이클 HTTP 핸들러
//
// 요청 흐름:
//  1. AuthMiddleware가 역할 검사를 마친 뒤 핸들러 진입
//  2. 경로/바디 파라미터 파싱
//  3. service 레이어 호출 후 상태 코드 매핑

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trace-ops/backend/internal/client"
	"github.com/trace-ops/backend/internal/model"
	"github.com/trace-ops/backend/internal/service"
	"github.com/trace-ops/backend/internal/store"
)

// Alert 핸들러 구조체 정의
type AlertHandler struct {
	alertService *service.AlertService
}

// Alert 핸들러 객체 생성
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// List godoc
// @Summary List alerts
// @Description Ledger read-through with local cache fallback.
// @Tags alerts
// @Produce json
// @Success 200 {object} model.AlertListResponse
// @Router /alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	alerts, source := h.alertService.List(c.Request.Context())
	c.JSON(http.StatusOK, model.AlertListResponse{
		Source: source,
		Data:   alerts,
	})
}

// Create godoc
// @Summary Create an alert
// @Tags alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateAlertRequest true "Alert classification"
// @Success 201 {object} model.Alert
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /alerts [post]
func (h *AlertHandler) Create(c *gin.Context) {
	var req model.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	alert := h.alertService.Create(req.Type, req.Zone, req.Criticality)
	c.JSON(http.StatusCreated, alert)
}

// Analyze godoc
// @Summary Run AI analysis on an alert
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param alertId path string true "Alert ID"
// @Success 200 {object} model.Alert
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /analyze/{alertId} [post]
func (h *AlertHandler) Analyze(c *gin.Context) {
	alert, err := h.alertService.Analyze(c.Param("alertId"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		case errors.Is(err, store.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "alert already decided"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, alert)
}

// UpdateDecision godoc
// @Summary Record a decision on an alert
// @Tags alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alertId path string true "Alert ID"
// @Param request body model.DecisionRequest true "Decision and ledger tx hash"
// @Success 200 {object} model.Alert
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /internal/update_decision/{alertId} [put]
func (h *AlertHandler) UpdateDecision(c *gin.Context) {
	var req model.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	// 결정 주체는 검증된 토큰의 subject에서 가져옴
	var subject string
	if claims := GetAuthClaims(c); claims != nil {
		subject = claims.Subject
	}

	alert, err := h.alertService.Decide(c.Param("alertId"), req.Decision, req.TxHash, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// VerifyLedger godoc
// @Summary Fetch a ledger document by id
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param txId path string true "Ledger document ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /ledger/verify/{txId} [get]
func (h *AlertHandler) VerifyLedger(c *gin.Context) {
	doc, err := h.alertService.VerifyLedger(c.Request.Context(), c.Param("txId"))
	if err != nil {
		if errors.Is(err, client.ErrDocNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}
