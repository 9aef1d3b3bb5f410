package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

const defaultScorerTimeout = 5 * time.Minute

// AuditService owns the audit lifecycle: it creates pending audit rows,
// dispatches the external scorer in the background and reconciles the
// outcome into a terminal state.
type AuditService struct {
	audits  ports.AuditRepository
	models  ports.ModelRepository
	scorer  ports.ScorerClient
	timeout time.Duration
}

func NewAuditService(audits ports.AuditRepository, models ports.ModelRepository, scorer ports.ScorerClient, timeout time.Duration) *AuditService {
	if timeout <= 0 {
		timeout = defaultScorerTimeout
	}
	return &AuditService{
		audits:  audits,
		models:  models,
		scorer:  scorer,
		timeout: timeout,
	}
}

// Start validates the model, persists a pending audit and returns it
// immediately. The scoring call runs detached from the caller's request;
// its outcome shows up in the audit row asynchronously.
func (s *AuditService) Start(ctx context.Context, modelID uuid.UUID, auditType string) (*domain.Audit, error) {
	at, err := domain.NormalizeAuditType(auditType)
	if err != nil {
		return nil, err
	}

	model, err := s.models.GetByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	audit := &domain.Audit{
		ID:             uuid.New(),
		ModelID:        &model.ID,
		AuditType:      at,
		Status:         domain.AuditStatusPending,
		CreatedAt:      time.Now(),
		ModelName:      model.Name,
		ModelFramework: string(model.Framework),
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		return nil, err
	}

	go s.reconcile(audit.ID, model.FilePath, at)

	return audit, nil
}

// reconcile drives a single audit to a terminal state. It runs on its own
// context so it outlives the request that spawned it, and every failure
// path funnels into markFailed instead of propagating.
func (s *AuditService) reconcile(auditID uuid.UUID, modelPath string, auditType domain.AuditType) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("audit_id", auditID).Errorf("audit reconciliation panic: %v", r)
			s.markFailed(auditID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.audits.MarkRunning(ctx, auditID); err != nil {
		log.WithError(err).WithField("audit_id", auditID).Error("audit dispatch failed")
		s.markFailed(auditID, "failed to dispatch audit")
		return
	}

	scores, err := s.scorer.Score(ctx, ports.ScoreRequest{
		AuditID:   auditID,
		ModelPath: modelPath,
		AuditType: auditType,
	})
	if err != nil {
		log.WithError(err).WithField("audit_id", auditID).Error("ml scorer call failed")
		s.markFailed(auditID, scorerFailureCause(err))
		return
	}

	if err := s.audits.MarkCompleted(ctx, auditID, *scores, time.Now()); err != nil {
		log.WithError(err).WithField("audit_id", auditID).Error("persist audit results failed")
		s.markFailed(auditID, "failed to persist audit results")
	}
}

func scorerFailureCause(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "ML service unavailable: scoring timed out"
	case errors.Is(err, domain.ErrMalformedScorerResponse):
		return "ML service returned a malformed response"
	default:
		return "ML service unavailable: " + err.Error()
	}
}

// markFailed is best-effort. If the failure write itself fails there is no
// caller left to tell, so the error is logged and the audit keeps its last
// consistent state.
func (s *AuditService) markFailed(auditID uuid.UUID, cause string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.audits.MarkFailed(ctx, auditID, cause); err != nil {
		log.WithError(err).WithField("audit_id", auditID).Error("record audit failure failed")
	}
}

func (s *AuditService) Get(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	return s.audits.GetByID(ctx, id)
}

func (s *AuditService) List(ctx context.Context, filter ports.AuditListFilter) ([]*domain.Audit, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.audits.List(ctx, filter)
}

func (s *AuditService) Stats(ctx context.Context) (*domain.AuditStats, error) {
	stats, err := s.audits.Stats(ctx)
	if err != nil {
		return nil, err
	}

	totalModels, err := s.models.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalModels = totalModels

	return stats, nil
}
