package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

type ModelService struct {
	models ports.ModelRepository
	store  ports.ArtifactStore
}

func NewModelService(models ports.ModelRepository, store ports.ArtifactStore) *ModelService {
	return &ModelService{models: models, store: store}
}

type UploadParams struct {
	Name         string
	Framework    string
	UploadedBy   *uuid.UUID
	OriginalName string
	File         io.Reader
}

// Upload stores the artifact and registers its metadata. A failed metadata
// insert removes the already-written artifact so nothing is orphaned.
func (s *ModelService) Upload(ctx context.Context, p UploadParams) (*domain.Model, error) {
	if p.Name == "" {
		return nil, domain.ErrInvalidModelName
	}
	fw, err := domain.NormalizeFramework(p.Framework)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateArtifactFilename(p.OriginalName); err != nil {
		return nil, err
	}

	id := uuid.New()
	filename := id.String() + strings.ToLower(filepath.Ext(p.OriginalName))

	path, size, err := s.store.Save(ctx, filename, p.File)
	if err != nil {
		return nil, err
	}

	model := &domain.Model{
		ID:         id,
		Name:       p.Name,
		Framework:  fw,
		FilePath:   path,
		UploadedBy: p.UploadedBy,
		UploadedAt: time.Now(),
		Metadata: domain.ModelMetadata{
			OriginalName: p.OriginalName,
			Size:         size,
		},
	}
	if err := s.models.Create(ctx, model); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			log.WithError(rmErr).WithField("path", path).Warn("cleanup of orphaned artifact failed")
		}
		return nil, err
	}

	return model, nil
}

func (s *ModelService) Get(ctx context.Context, id uuid.UUID) (*domain.Model, error) {
	return s.models.GetByID(ctx, id)
}

func (s *ModelService) List(ctx context.Context, limit, offset int) ([]*domain.Model, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.models.List(ctx, limit, offset)
}

// Delete removes the row, then the artifact. A missing artifact file is
// success so the delete stays idempotent; audits keep their rows and
// degrade the model reference to "Unknown".
func (s *ModelService) Delete(ctx context.Context, id uuid.UUID) error {
	model, err := s.models.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.models.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.Remove(model.FilePath); err != nil {
		// Row is already gone; an unreachable artifact only leaks disk.
		log.WithError(err).WithField("path", model.FilePath).Warn("artifact removal failed")
	}

	return nil
}
