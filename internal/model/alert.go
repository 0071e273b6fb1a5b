// 경보(Alert) 레코드와 라이프사이클 상태를 정의
// handler, service, store 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import "time"

// Alert 상태 값
// 상태는 단방향으로만 진행: NEW -> ANALYZED -> DECIDED
const (
	StatusNew      = "NEW"
	StatusAnalyzed = "ANALYZED"
	StatusDecided  = "DECIDED"
)

// Alert - 개별 경보 레코드
// ID는 생성 시 한 번 부여되고 이후 변경되지 않음
type Alert struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Zone        string    `json:"zone"`
	Criticality string    `json:"criticality"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`

	// AI 분석 단계에서 함께 설정 (ANALYZED 이후에만 존재)
	// AIScore 범위: 40 ~ 99
	AIScore   *int   `json:"aiScore,omitempty"`
	AISummary string `json:"aiSummary,omitempty"`

	// 결정 단계에서 함께 설정 (DECIDED 이후에만 존재)
	Decision  string `json:"decision,omitempty"`
	TxHash    string `json:"txHash,omitempty"`
	DecidedBy string `json:"decidedBy,omitempty"`
}

// CreateAlertRequest - POST /alerts 요청 바디
type CreateAlertRequest struct {
	Type        string `json:"type" binding:"required"`
	Zone        string `json:"zone" binding:"required"`
	Criticality string `json:"criticality" binding:"required"`
}

// DecisionRequest - PUT /internal/update_decision/{alertId} 요청 바디
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	TxHash   string `json:"txHash" binding:"required"`
}
