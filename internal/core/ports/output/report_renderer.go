package ports

import "guardian-audit-service/internal/core/domain"

type ReportData struct {
	Audit       *domain.Audit
	RequestedBy string
}

// ReportRenderer turns a completed audit into a downloadable document.
type ReportRenderer interface {
	Render(data *ReportData) ([]byte, error)
}
