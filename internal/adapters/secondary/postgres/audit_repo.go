package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

type auditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Create(ctx context.Context, audit *domain.Audit) error {
	query := `
		INSERT INTO audits (id, model_id, audit_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		audit.ID, audit.ModelID, string(audit.AuditType), string(audit.Status), audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create audit: %w", err)
	}
	return nil
}

func (r *auditRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	query := `
		SELECT a.id, a.model_id, a.audit_type, a.status,
			   a.bias_score, a.fairness_score, a.compliance_score,
			   a.results, a.created_at, a.completed_at,
			   COALESCE(m.name, $2) AS model_name,
			   COALESCE(m.framework, '') AS model_framework
		FROM audits a
		LEFT JOIN ml_models m ON m.id = a.model_id
		WHERE a.id = $1
	`
	a, err := scanAudit(r.pool.QueryRow(ctx, query, id, domain.UnknownModelName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuditNotFound
		}
		return nil, fmt.Errorf("get audit by id: %w", err)
	}
	return a, nil
}

func (r *auditRepo) List(ctx context.Context, filter ports.AuditListFilter) ([]*domain.Audit, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}
	if filter.ModelID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("a.model_id = $%d", argPos))
		args = append(args, filter.ModelID)
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audits a WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audits: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.model_id, a.audit_type, a.status,
			   a.bias_score, a.fairness_score, a.compliance_score,
			   a.results, a.created_at, a.completed_at,
			   COALESCE(m.name, $%d) AS model_name,
			   COALESCE(m.framework, '') AS model_framework
		FROM audits a
		LEFT JOIN ml_models m ON m.id = a.model_id
		WHERE %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, argPos, whereClause, argPos+1, argPos+2)

	args = append(args, domain.UnknownModelName, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	var audits []*domain.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit row: %w", err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit rows: %w", err)
	}

	return audits, total, nil
}

func (r *auditRepo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE audits SET status = $2
		WHERE id = $1 AND status IN ($3, $2)
	`
	result, err := r.pool.Exec(ctx, query, id,
		string(domain.AuditStatusRunning), string(domain.AuditStatusPending))
	if err != nil {
		return fmt.Errorf("mark audit running: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAuditNotFound
	}
	return nil
}

// MarkCompleted writes the terminal status, all three scores, the results
// payload and the completion timestamp in one statement so readers never
// see a completed audit without its scores. The status guard makes a write
// against an already-terminal audit a no-op.
func (r *auditRepo) MarkCompleted(ctx context.Context, id uuid.UUID, scores domain.AuditScores, completedAt time.Time) error {
	resultsJSON, err := json.Marshal(scores.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `
		UPDATE audits
		SET status = $2, bias_score = $3, fairness_score = $4,
			compliance_score = $5, results = $6, completed_at = $7
		WHERE id = $1 AND status IN ($8, $9)
	`
	_, err = r.pool.Exec(ctx, query, id,
		string(domain.AuditStatusCompleted),
		scores.Bias, scores.Fairness, scores.Compliance,
		resultsJSON, completedAt,
		string(domain.AuditStatusPending), string(domain.AuditStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("mark audit completed: %w", err)
	}
	return nil
}

func (r *auditRepo) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	resultsJSON, err := json.Marshal(map[string]string{"error": cause})
	if err != nil {
		return fmt.Errorf("marshal failure payload: %w", err)
	}

	query := `
		UPDATE audits
		SET status = $2, results = $3, completed_at = $4
		WHERE id = $1 AND status IN ($5, $6)
	`
	_, err = r.pool.Exec(ctx, query, id,
		string(domain.AuditStatusFailed), resultsJSON, time.Now(),
		string(domain.AuditStatusPending), string(domain.AuditStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("mark audit failed: %w", err)
	}
	return nil
}

func (r *auditRepo) Stats(ctx context.Context) (*domain.AuditStats, error) {
	query := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE status = 'completed'),
			   COUNT(*) FILTER (WHERE status = 'running'),
			   COUNT(*) FILTER (WHERE status = 'failed'),
			   COALESCE(AVG(compliance_score) FILTER (WHERE status = 'completed'), 0),
			   COALESCE(AVG(bias_score) FILTER (WHERE status = 'completed'), 0),
			   COALESCE(AVG(fairness_score) FILTER (WHERE status = 'completed'), 0)
		FROM audits
	`
	stats := &domain.AuditStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalAudits, &stats.Completed, &stats.Running, &stats.Failed,
		&stats.AvgCompliance, &stats.AvgBiasScore, &stats.AvgFairnessScore,
	)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}
	return stats, nil
}

func scanAudit(row pgx.Row) (*domain.Audit, error) {
	a := &domain.Audit{}
	var auditType, status string
	var resultsJSON []byte

	err := row.Scan(
		&a.ID, &a.ModelID, &auditType, &status,
		&a.BiasScore, &a.FairnessScore, &a.ComplianceScore,
		&resultsJSON, &a.CreatedAt, &a.CompletedAt,
		&a.ModelName, &a.ModelFramework,
	)
	if err != nil {
		return nil, err
	}
	a.AuditType = domain.AuditType(auditType)
	a.Status = domain.AuditStatus(status)

	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &a.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	return a, nil
}
