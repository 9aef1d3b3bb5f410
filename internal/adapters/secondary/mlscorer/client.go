package mlscorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"guardian-audit-service/internal/config"
	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

type scorerClient struct {
	baseURL string
	client  *http.Client
}

// NewScorerClient creates the HTTP adapter for the external ML scoring
// service. The timeout covers the full scoring call; model evaluation is
// compute-heavy and routinely runs for minutes.
func NewScorerClient(cfg *config.MLScorerConfig) ports.ScorerClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	return &scorerClient{
		baseURL: cfg.URL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type scoreRequest struct {
	AuditID   string `json:"audit_id"`
	ModelPath string `json:"model_path"`
	AuditType string `json:"audit_type"`
}

func (c *scorerClient) Score(ctx context.Context, req ports.ScoreRequest) (*domain.AuditScores, error) {
	body, err := json.Marshal(scoreRequest{
		AuditID:   req.AuditID.String(),
		ModelPath: req.ModelPath,
		AuditType: string(req.AuditType),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal score request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audit", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call ml scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ml scorer returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read scorer response: %w", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedScorerResponse, err)
	}

	bias, ok := numberField(payload, "bias_score")
	if !ok {
		return nil, fmt.Errorf("%w: missing bias_score", domain.ErrMalformedScorerResponse)
	}
	fairness, ok := numberField(payload, "fairness_score")
	if !ok {
		return nil, fmt.Errorf("%w: missing fairness_score", domain.ErrMalformedScorerResponse)
	}
	compliance, ok := numberField(payload, "compliance_score")
	if !ok {
		// Legacy scorers report the compliance rating as cern_compliance.
		compliance, ok = numberField(payload, "cern_compliance")
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing compliance_score", domain.ErrMalformedScorerResponse)
	}

	return &domain.AuditScores{
		Bias:       normalizeScore(bias),
		Fairness:   normalizeScore(fairness),
		Compliance: normalizeScore(compliance),
		Results:    payload,
	}, nil
}

// normalizeScore maps the scorer's mixed conventions onto the canonical
// 0-100 scale: values in [0, 1] are fractions, anything larger is already
// a percentage.
func normalizeScore(v float64) float64 {
	if v >= 0 && v <= 1 {
		return v * 100
	}
	return v
}

func numberField(m map[string]interface{}, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
