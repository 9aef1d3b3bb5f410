package dto

import (
	"time"

	"guardian-audit-service/internal/core/domain"
)

type ModelResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Framework       string    `json:"framework"`
	UploadedAt      time.Time `json:"uploaded_at"`
	UploadedByEmail string    `json:"uploaded_by_email,omitempty"`
	OriginalName    string    `json:"original_name,omitempty"`
	Size            int64     `json:"size,omitempty"`
}

func ToModelResponse(m *domain.Model) ModelResponse {
	return ModelResponse{
		ID:              m.ID.String(),
		Name:            m.Name,
		Framework:       string(m.Framework),
		UploadedAt:      m.UploadedAt,
		UploadedByEmail: m.UploadedByEmail,
		OriginalName:    m.Metadata.OriginalName,
		Size:            m.Metadata.Size,
	}
}

type ListModelsResponse struct {
	Models     []ModelResponse `json:"models"`
	Pagination Pagination      `json:"pagination"`
}
