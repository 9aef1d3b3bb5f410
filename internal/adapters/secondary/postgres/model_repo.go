package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

type modelRepo struct {
	pool *pgxpool.Pool
}

func NewModelRepository(pool *pgxpool.Pool) ports.ModelRepository {
	return &modelRepo{pool: pool}
}

func (r *modelRepo) Create(ctx context.Context, model *domain.Model) error {
	metadataJSON, err := json.Marshal(model.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO ml_models (id, name, framework, file_path, uploaded_by, uploaded_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		model.ID, model.Name, string(model.Framework), model.FilePath,
		model.UploadedBy, model.UploadedAt, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}
	return nil
}

func (r *modelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Model, error) {
	query := `
		SELECT m.id, m.name, m.framework, m.file_path, m.uploaded_by,
			   m.uploaded_at, m.metadata,
			   COALESCE(u.email, '') AS uploaded_by_email
		FROM ml_models m
		LEFT JOIN users u ON u.id = m.uploaded_by
		WHERE m.id = $1
	`
	m, err := scanModel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("get model by id: %w", err)
	}
	return m, nil
}

func (r *modelRepo) List(ctx context.Context, limit, offset int) ([]*domain.Model, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ml_models").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count models: %w", err)
	}

	query := `
		SELECT m.id, m.name, m.framework, m.file_path, m.uploaded_by,
			   m.uploaded_at, m.metadata,
			   COALESCE(u.email, '') AS uploaded_by_email
		FROM ml_models m
		LEFT JOIN users u ON u.id = m.uploaded_by
		ORDER BY m.uploaded_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []*domain.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan model row: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate model rows: %w", err)
	}

	return models, total, nil
}

func (r *modelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM ml_models WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModelNotFound
	}
	return nil
}

func (r *modelRepo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ml_models").Scan(&total); err != nil {
		return 0, fmt.Errorf("count models: %w", err)
	}
	return total, nil
}

func scanModel(row pgx.Row) (*domain.Model, error) {
	m := &domain.Model{}
	var framework string
	var metadataJSON []byte

	err := row.Scan(
		&m.ID, &m.Name, &framework, &m.FilePath, &m.UploadedBy,
		&m.UploadedAt, &metadataJSON, &m.UploadedByEmail,
	)
	if err != nil {
		return nil, err
	}
	m.Framework = domain.Framework(framework)

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return m, nil
}
