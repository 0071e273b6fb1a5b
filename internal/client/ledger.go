// 원장(ledger) world state를 조회하는 CouchDB HTTP 클라이언트
//
// 환경변수:
//   - COUCHDB_URL: CouchDB 베이스 URL (예: http://couchdb:5984)
//   - COUCHDB_DATABASE: 조회 대상 데이터베이스 이름
//
// 읽기 전용으로만 사용 (쓰기는 Zone 2 체인코드 경로에서만 발생)

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trace-ops/backend/internal/config"
	"github.com/trace-ops/backend/internal/model"
)

var (
	ErrLedgerUnavailable = errors.New("ledger store unreachable")
	ErrDocNotFound       = errors.New("ledger document not found")
)

// Ping 결과 값
const (
	LedgerConnected   = "connected"
	LedgerIssue       = "issue"
	LedgerUnreachable = "unreachable"
)

// LedgerClient 구조체 정의
type LedgerClient struct {
	baseURL    string
	database   string
	httpClient *http.Client
}

// LedgerClient 객체 생성
func NewLedgerClient(cfg config.LedgerConfig) *LedgerClient {
	return &LedgerClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		database: cfg.Database,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

type allDocsRow struct {
	ID  string          `json:"id"`
	Doc json.RawMessage `json:"doc"`
}

type allDocsResponse struct {
	Rows []allDocsRow `json:"rows"`
}

// AllDocs - 데이터베이스의 모든 문서를 본문 포함으로 조회
// 404(데이터베이스 미생성)는 빈 결과로 취급 (원장 쪽 프로비저닝이 아직일 수 있음)
// "_"로 시작하는 id는 CouchDB 내부 문서(design doc 등)이므로 제외
func (c *LedgerClient) AllDocs(ctx context.Context) ([]model.Alert, error) {
	reqURL := fmt.Sprintf("%s/%s/_all_docs?include_docs=true", c.baseURL, c.database)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []model.Alert{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ledger returned status %d", ErrLedgerUnavailable, resp.StatusCode)
	}

	var body allDocsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse ledger response: %w", err)
	}

	alerts := make([]model.Alert, 0, len(body.Rows))
	for _, row := range body.Rows {
		if strings.HasPrefix(row.ID, "_") {
			continue
		}
		var alert model.Alert
		if err := json.Unmarshal(row.Doc, &alert); err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// GetDocument - 단일 문서 조회 (검증용, 원본 그대로 반환)
func (c *LedgerClient) GetDocument(ctx context.Context, id string) (map[string]any, error) {
	reqURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.database, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrDocNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ledger returned status %d", ErrLedgerUnavailable, resp.StatusCode)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse ledger document: %w", err)
	}
	return doc, nil
}

// Ping - 헬스체크용 연결 상태 확인
func (c *LedgerClient) Ping(ctx context.Context) string {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, c.database)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return LedgerUnreachable
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LedgerUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return LedgerConnected
	}
	return LedgerIssue
}
