package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"guardian-audit-service/internal/core/domain"
)

type AuditListFilter struct {
	Status  string
	ModelID uuid.UUID
	Limit   int
	Offset  int
}

type ModelRepository interface {
	Create(ctx context.Context, model *domain.Model) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Model, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Model, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// AuditRepository persists audit rows. The Mark* methods carry status guards
// in their statements so a terminal audit is never overwritten, regardless
// of caller interleaving.
type AuditRepository interface {
	Create(ctx context.Context, audit *domain.Audit) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Audit, error)
	List(ctx context.Context, filter AuditListFilter) ([]*domain.Audit, int, error)

	// MarkRunning transitions pending -> running. Re-marking a running
	// audit is a no-op.
	MarkRunning(ctx context.Context, id uuid.UUID) error

	// MarkCompleted atomically writes the terminal status together with
	// scores, results and the completion timestamp.
	MarkCompleted(ctx context.Context, id uuid.UUID, scores domain.AuditScores, completedAt time.Time) error

	// MarkFailed records the terminal failed status with an error payload.
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) error

	Stats(ctx context.Context) (*domain.AuditStats, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
