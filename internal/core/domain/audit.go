package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditStatus string

const (
	AuditStatusPending   AuditStatus = "pending"
	AuditStatusRunning   AuditStatus = "running"
	AuditStatusCompleted AuditStatus = "completed"
	AuditStatusFailed    AuditStatus = "failed"
)

// Terminal reports whether no further status transition is allowed.
func (s AuditStatus) Terminal() bool {
	return s == AuditStatusCompleted || s == AuditStatusFailed
}

type AuditType string

const (
	AuditTypeBias           AuditType = "bias"
	AuditTypeFairness       AuditType = "fairness"
	AuditTypeExplainability AuditType = "explainability"
	AuditTypeFull           AuditType = "full"
)

var validAuditTypes = map[AuditType]bool{
	AuditTypeBias:           true,
	AuditTypeFairness:       true,
	AuditTypeExplainability: true,
	AuditTypeFull:           true,
}

// NormalizeAuditType validates the requested type, defaulting to "full"
// when unspecified.
func NormalizeAuditType(t string) (AuditType, error) {
	if t == "" {
		return AuditTypeFull, nil
	}
	at := AuditType(t)
	if !validAuditTypes[at] {
		return "", ErrInvalidAuditType
	}
	return at, nil
}

// UnknownModelName is reported when an audit's model has since been deleted.
const UnknownModelName = "Unknown"

// Audit is a single evaluation of one model. Scores are on the canonical
// 0-100 scale and are non-nil exactly when the audit completed.
type Audit struct {
	ID              uuid.UUID              `json:"id"`
	ModelID         *uuid.UUID             `json:"model_id"`
	AuditType       AuditType              `json:"audit_type"`
	Status          AuditStatus            `json:"status"`
	BiasScore       *float64               `json:"bias_score"`
	FairnessScore   *float64               `json:"fairness_score"`
	ComplianceScore *float64               `json:"compliance_score"`
	Results         map[string]interface{} `json:"results"`
	CreatedAt       time.Time              `json:"created_at"`
	CompletedAt     *time.Time             `json:"completed_at"`

	// Computed fields from the model join
	ModelName      string `json:"model_name,omitempty"`
	ModelFramework string `json:"model_framework,omitempty"`
}

// AuditScores is the normalized outcome of a successful scorer call.
type AuditScores struct {
	Bias       float64
	Fairness   float64
	Compliance float64
	Results    map[string]interface{}
}

type AuditStats struct {
	TotalAudits      int     `json:"total_audits"`
	Completed        int     `json:"completed"`
	Running          int     `json:"running"`
	Failed           int     `json:"failed"`
	AvgCompliance    float64 `json:"avg_compliance"`
	AvgBiasScore     float64 `json:"avg_bias_score"`
	AvgFairnessScore float64 `json:"avg_fairness_score"`
	TotalModels      int     `json:"total_models"`
}
