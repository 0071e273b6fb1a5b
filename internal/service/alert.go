// 경보 라이프사이클 비즈니스 로직 정의
// handler에서 받은 요청을 store 상태 전이로 연결하고, 목록 조회 시 원장을 우선 참조
//
// 처리 흐름:
//  1. Create: store에 NEW 경보 삽입
//  2. Analyze: 점수/요약 생성 후 ApplyAnalysis (NEW/ANALYZED 상태에서만)
//  3. Decide: ApplyDecision + 결정 주체(decidedBy) 기록
//  4. List: 원장 _all_docs 우선, 비어있거나 실패하면 로컬 캐시로 폴백
//  5. VerifyLedger: 원장 단일 문서를 그대로 반환

package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/trace-ops/backend/internal/model"
	"github.com/trace-ops/backend/internal/store"
)

// 목록 응답의 데이터 출처
const (
	SourceLedger     = "ledger"
	SourceCacheLocal = "cache_local"
)

// LedgerReader - 원장 조회 (읽기 전용)
type LedgerReader interface {
	AllDocs(ctx context.Context) ([]model.Alert, error)
	GetDocument(ctx context.Context, id string) (map[string]any, error)
}

// AlertService 구조체 정의
type AlertService struct {
	store  *store.AlertStore
	ledger LedgerReader
}

// AlertService 객체 생성
func NewAlertService(alertStore *store.AlertStore, ledger LedgerReader) *AlertService {
	return &AlertService{
		store:  alertStore,
		ledger: ledger,
	}
}

// Create - 새 경보 등록
func (s *AlertService) Create(alertType, zone, criticality string) model.Alert {
	alert := s.store.Insert(alertType, zone, criticality)
	log.Printf("Alert created: id=%s type=%s zone=%s criticality=%s", alert.ID, alertType, zone, criticality)
	return alert
}

// Analyze - AI 분석 시뮬레이션
// 점수는 40~99 범위의 난수, 요약은 해당 zone을 언급하는 고정 템플릿
func (s *AlertService) Analyze(id string) (model.Alert, error) {
	alert, err := s.store.Get(id)
	if err != nil {
		return model.Alert{}, err
	}

	score := rand.Intn(60) + 40
	summary := fmt.Sprintf("AI analysis: potential threat confirmed on %s.", alert.Zone)

	updated, err := s.store.ApplyAnalysis(id, score, summary)
	if err != nil {
		return model.Alert{}, err
	}

	log.Printf("Alert analyzed: id=%s score=%d", id, score)
	return updated, nil
}

// Decide - 결정 기록
// 결정 주체(subject)는 레코드에 남기고 로그로도 기록
func (s *AlertService) Decide(id, decision, txHash, subject string) (model.Alert, error) {
	updated, err := s.store.ApplyDecision(id, decision, txHash, subject)
	if err != nil {
		return model.Alert{}, err
	}

	log.Printf("Decision recorded: alert_id=%s decision=%s tx_hash=%s decided_by=%s", id, decision, txHash, subject)
	return updated, nil
}

// List - 원장 우선 조회 (read-through)
// 원장이 비어있거나 접근 불가하면 로컬 저장소로 폴백하고 출처를 표시
func (s *AlertService) List(ctx context.Context) ([]model.Alert, string) {
	alerts, err := s.ledger.AllDocs(ctx)
	if err != nil {
		log.Printf("Ledger read failed, serving local cache: %v", err)
		return s.store.ListAll(), SourceCacheLocal
	}
	if len(alerts) == 0 {
		return s.store.ListAll(), SourceCacheLocal
	}
	return alerts, SourceLedger
}

// VerifyLedger - 원장 문서 단건 검증 조회
func (s *AlertService) VerifyLedger(ctx context.Context, txID string) (map[string]any, error) {
	return s.ledger.GetDocument(ctx, txID)
}
