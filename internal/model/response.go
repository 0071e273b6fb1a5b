package model

type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse - 자체 상태 + 원장(ledger) 연결 상태
// Ledger: connected | issue | unreachable
type HealthResponse struct {
	Status string `json:"status"`
	Ledger string `json:"ledger"`
}

// AlertListResponse - GET /alerts 응답
// Source: "ledger" (원장 조회 성공) 또는 "cache_local" (로컬 폴백)
type AlertListResponse struct {
	Source string  `json:"source"`
	Data   []Alert `json:"data"`
}
