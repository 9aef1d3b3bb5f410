package services

import (
	"context"

	"github.com/google/uuid"

	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

type ReportService struct {
	audits   ports.AuditRepository
	renderer ports.ReportRenderer
}

func NewReportService(audits ports.AuditRepository, renderer ports.ReportRenderer) *ReportService {
	return &ReportService{audits: audits, renderer: renderer}
}

// Generate renders a compliance report for a completed audit. The audit's
// model join already degrades to "Unknown" when the model was deleted.
func (s *ReportService) Generate(ctx context.Context, auditID uuid.UUID, requestedBy string) ([]byte, error) {
	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return nil, err
	}

	if audit.Status != domain.AuditStatusCompleted {
		return nil, domain.ErrAuditNotCompleted
	}

	return s.renderer.Render(&ports.ReportData{
		Audit:       audit,
		RequestedBy: requestedBy,
	})
}
