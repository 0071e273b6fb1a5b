// 경보 인메모리 저장소
// 프로세스 수명 동안만 유지되며, 단일 뮤텍스로 모든 read-modify-write를 보호
// 호출자는 항상 복사본을 받고 내부 레코드를 직접 수정할 수 없음

package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trace-ops/backend/internal/model"
)

var (
	ErrNotFound          = errors.New("alert not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// AlertStore - id 기준 경보 보관소
// order 슬라이스로 삽입 순서를 보존 (ListAll의 유일한 정렬 기준)
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]*model.Alert
	order  []string
}

func NewAlertStore() *AlertStore {
	return &AlertStore{
		alerts: make(map[string]*model.Alert),
	}
}

// Insert - 새 경보 생성 (status=NEW, 선택 필드 모두 미설정)
func (s *AlertStore) Insert(alertType, zone, criticality string) model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert := &model.Alert{
		ID:          uuid.NewString()[:8],
		Type:        alertType,
		Zone:        zone,
		Criticality: criticality,
		Timestamp:   time.Now().UTC(),
		Status:      model.StatusNew,
	}

	s.alerts[alert.ID] = alert
	s.order = append(s.order, alert.ID)

	return copyAlert(alert)
}

// Get - id로 단건 조회
func (s *AlertStore) Get(id string) (model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	return copyAlert(alert), nil
}

// ListAll - 전체 경보를 삽입 순서대로 반환
func (s *AlertStore) ListAll() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Alert, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyAlert(s.alerts[id]))
	}
	return out
}

// ApplyAnalysis - AI 분석 결과 반영 (status -> ANALYZED)
// NEW 또는 ANALYZED 상태에서만 허용 (재분석 시 이전 점수/요약을 덮어씀)
// DECIDED 이후의 분석은 상태를 되돌리게 되므로 거부
func (s *AlertStore) ApplyAnalysis(id string, score int, summary string) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	if alert.Status != model.StatusNew && alert.Status != model.StatusAnalyzed {
		return model.Alert{}, ErrInvalidTransition
	}

	alert.AIScore = &score
	alert.AISummary = summary
	alert.Status = model.StatusAnalyzed

	return copyAlert(alert), nil
}

// ApplyDecision - 결정 기록 (status -> DECIDED)
// 이전 상태와 무관하게 허용 (ANALYZED 게이트를 건너뛰는 관용적 동작을 유지)
func (s *AlertStore) ApplyDecision(id, decision, txHash, decidedBy string) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, ErrNotFound
	}

	alert.Decision = decision
	alert.TxHash = txHash
	alert.DecidedBy = decidedBy
	alert.Status = model.StatusDecided

	return copyAlert(alert), nil
}

func copyAlert(alert *model.Alert) model.Alert {
	out := *alert
	if alert.AIScore != nil {
		score := *alert.AIScore
		out.AIScore = &score
	}
	return out
}
