package dto

import (
	"time"

	"guardian-audit-service/internal/core/domain"
)

type RunAuditRequest struct {
	ModelID   string `json:"model_id" binding:"required"`
	AuditType string `json:"audit_type"`
}

type AuditResponse struct {
	ID              string                 `json:"id"`
	ModelID         *string                `json:"model_id"`
	ModelName       string                 `json:"model_name"`
	ModelFramework  string                 `json:"model_framework,omitempty"`
	AuditType       string                 `json:"audit_type"`
	Status          string                 `json:"status"`
	BiasScore       *float64               `json:"bias_score"`
	FairnessScore   *float64               `json:"fairness_score"`
	ComplianceScore *float64               `json:"compliance_score"`
	Results         map[string]interface{} `json:"results,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	CompletedAt     *time.Time             `json:"completed_at"`
}

func ToAuditResponse(a *domain.Audit) AuditResponse {
	var modelID *string
	if a.ModelID != nil {
		s := a.ModelID.String()
		modelID = &s
	}
	return AuditResponse{
		ID:              a.ID.String(),
		ModelID:         modelID,
		ModelName:       a.ModelName,
		ModelFramework:  a.ModelFramework,
		AuditType:       string(a.AuditType),
		Status:          string(a.Status),
		BiasScore:       a.BiasScore,
		FairnessScore:   a.FairnessScore,
		ComplianceScore: a.ComplianceScore,
		Results:         a.Results,
		CreatedAt:       a.CreatedAt,
		CompletedAt:     a.CompletedAt,
	}
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type ListAuditsResponse struct {
	Audits     []AuditResponse `json:"audits"`
	Pagination Pagination      `json:"pagination"`
}

type StatsResponse struct {
	Stats *domain.AuditStats `json:"stats"`
}
