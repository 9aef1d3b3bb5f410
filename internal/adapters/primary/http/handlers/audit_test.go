package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

func pendingAudit(modelID uuid.UUID) *domain.Audit {
	return &domain.Audit{
		ID:        uuid.New(),
		ModelID:   &modelID,
		AuditType: domain.AuditTypeFull,
		Status:    domain.AuditStatusPending,
		CreatedAt: time.Now(),
		ModelName: "credit-scorer",
	}
}

func TestRunAudit_Accepted(t *testing.T) {
	f := newFixture()
	modelID := uuid.New()

	f.models.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, Name: "credit-scorer", FilePath: "/data/m.pkl"}, nil)
	f.audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	// Background reconciliation may or may not run before the test ends.
	f.audits.On("MarkRunning", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.scorer.On("Score", mock.Anything, mock.Anything).
		Return(&domain.AuditScores{Bias: 10, Fairness: 90, Compliance: 85}, nil).Maybe()
	f.audits.On("MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Maybe()

	token := bearerToken(t, domain.RoleAuditor)
	w := f.do(t, http.MethodPost, "/api/audits/run",
		jsonBody(`{"model_id":"`+modelID.String()+`","audit_type":"bias"}`), token)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Audit started", resp["message"])
	assert.Equal(t, "pending", resp["status"])
	_, err := uuid.Parse(resp["audit_id"].(string))
	assert.NoError(t, err)
}

func TestRunAudit_ModelNotFound(t *testing.T) {
	f := newFixture()
	modelID := uuid.New()

	f.models.On("GetByID", mock.Anything, modelID).Return(nil, domain.ErrModelNotFound)

	token := bearerToken(t, domain.RoleAdmin)
	w := f.do(t, http.MethodPost, "/api/audits/run",
		jsonBody(`{"model_id":"`+modelID.String()+`"}`), token)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunAudit_UnparseableModelID(t *testing.T) {
	f := newFixture()

	token := bearerToken(t, domain.RoleAdmin)
	w := f.do(t, http.MethodPost, "/api/audits/run",
		jsonBody(`{"model_id":"nonexistent-id"}`), token)

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.models.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRunAudit_MissingModelID(t *testing.T) {
	f := newFixture()

	token := bearerToken(t, domain.RoleAdmin)
	w := f.do(t, http.MethodPost, "/api/audits/run", jsonBody(`{}`), token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAudit_Found(t *testing.T) {
	f := newFixture()
	audit := pendingAudit(uuid.New())

	f.audits.On("GetByID", mock.Anything, audit.ID).Return(audit, nil)

	token := bearerToken(t, domain.RoleViewer)
	w := f.do(t, http.MethodGet, "/api/audits/"+audit.ID.String(), nil, token)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Audit struct {
			ID        string `json:"id"`
			Status    string `json:"status"`
			ModelName string `json:"model_name"`
		} `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, audit.ID.String(), resp.Audit.ID)
	assert.Equal(t, "pending", resp.Audit.Status)
	assert.Equal(t, "credit-scorer", resp.Audit.ModelName)
}

func TestGetAudit_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.audits.On("GetByID", mock.Anything, id).Return(nil, domain.ErrAuditNotFound)

	token := bearerToken(t, domain.RoleViewer)
	w := f.do(t, http.MethodGet, "/api/audits/"+id.String(), nil, token)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAudits_Pagination(t *testing.T) {
	f := newFixture()
	audits := []*domain.Audit{pendingAudit(uuid.New()), pendingAudit(uuid.New())}

	f.audits.On("List", mock.Anything, ports.AuditListFilter{
		Status: "completed",
		Limit:  10,
		Offset: 10,
	}).Return(audits, 42, nil)

	token := bearerToken(t, domain.RoleViewer)
	w := f.do(t, http.MethodGet, "/api/audits?status=completed&page=2&limit=10", nil, token)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Audits     []json.RawMessage `json:"audits"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Audits, 2)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 42, resp.Pagination.Total)
	assert.Equal(t, 5, resp.Pagination.Pages)
}

func TestListAudits_InvalidModelIDFilter(t *testing.T) {
	f := newFixture()

	token := bearerToken(t, domain.RoleViewer)
	w := f.do(t, http.MethodGet, "/api/audits?model_id=garbage", nil, token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.audits.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAuditStats(t *testing.T) {
	f := newFixture()

	f.audits.On("Stats", mock.Anything).Return(&domain.AuditStats{
		TotalAudits:  7,
		Completed:    4,
		AvgBiasScore: 12.5,
	}, nil)
	f.models.On("Count", mock.Anything).Return(3, nil)

	token := bearerToken(t, domain.RoleViewer)
	w := f.do(t, http.MethodGet, "/api/audits/stats/summary", nil, token)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats domain.AuditStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Stats.TotalAudits)
	assert.Equal(t, 3, resp.Stats.TotalModels)
}
