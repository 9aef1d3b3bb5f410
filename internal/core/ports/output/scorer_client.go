package ports

import (
	"context"

	"github.com/google/uuid"

	"guardian-audit-service/internal/core/domain"
)

type ScoreRequest struct {
	AuditID   uuid.UUID
	ModelPath string
	AuditType domain.AuditType
}

// ScorerClient calls the external ML scoring service. Implementations
// normalize scores to the canonical 0-100 scale before returning.
type ScorerClient interface {
	Score(ctx context.Context, req ScoreRequest) (*domain.AuditScores, error)
}
