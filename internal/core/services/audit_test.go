package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
	"guardian-audit-service/internal/testutil"
)

func newAuditFixture() (*testutil.MockAuditRepo, *testutil.MockModelRepo, *testutil.MockScorerClient, *AuditService) {
	audits := new(testutil.MockAuditRepo)
	models := new(testutil.MockModelRepo)
	scorer := new(testutil.MockScorerClient)
	svc := NewAuditService(audits, models, scorer, time.Second)
	return audits, models, scorer, svc
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciliation did not reach a terminal state")
	}
}

func TestAuditService_Start_ReturnsPendingImmediately(t *testing.T) {
	audits, models, scorer, svc := newAuditFixture()

	modelID := uuid.New()
	model := &domain.Model{ID: modelID, Name: "credit-model", Framework: domain.FrameworkPytorch, FilePath: "/uploads/m.pt"}
	models.On("GetByID", mock.Anything, modelID).Return(model, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil)
	audits.On("MarkRunning", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	scores := &domain.AuditScores{Bias: 12, Fairness: 81, Compliance: 77, Results: map[string]interface{}{"bias_score": 0.12}}
	scorer.On("Score", mock.Anything, mock.AnythingOfType("ports.ScoreRequest")).Return(scores, nil)

	done := make(chan struct{})
	audits.On("MarkCompleted", mock.Anything, mock.AnythingOfType("uuid.UUID"),
		mock.MatchedBy(func(s domain.AuditScores) bool {
			return s.Bias == 12 && s.Fairness == 81 && s.Compliance == 77
		}), mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) { close(done) }).Return(nil)

	audit, err := svc.Start(context.Background(), modelID, "full")
	assert.NoError(t, err)
	assert.Equal(t, domain.AuditStatusPending, audit.Status)
	assert.Equal(t, domain.AuditTypeFull, audit.AuditType)
	assert.NotEqual(t, uuid.Nil, audit.ID)
	assert.Equal(t, "credit-model", audit.ModelName)

	waitDone(t, done)
	audits.AssertExpectations(t)
	scorer.AssertExpectations(t)
}

func TestAuditService_Start_DefaultsToFullAudit(t *testing.T) {
	audits, models, scorer, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID, FilePath: "/m.pkl"}, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil)
	audits.On("MarkRunning", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)
	scorer.On("Score", mock.Anything, mock.MatchedBy(func(req ports.ScoreRequest) bool {
		return req.AuditType == domain.AuditTypeFull && req.ModelPath == "/m.pkl"
	})).Return(&domain.AuditScores{}, nil)

	done := make(chan struct{})
	audits.On("MarkCompleted", mock.Anything, mock.AnythingOfType("uuid.UUID"),
		mock.AnythingOfType("domain.AuditScores"), mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) { close(done) }).Return(nil)

	audit, err := svc.Start(context.Background(), modelID, "")
	assert.NoError(t, err)
	assert.Equal(t, domain.AuditTypeFull, audit.AuditType)

	waitDone(t, done)
	scorer.AssertExpectations(t)
}

func TestAuditService_Start_ModelNotFound(t *testing.T) {
	audits, models, _, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(nil, domain.ErrModelNotFound)

	_, err := svc.Start(context.Background(), modelID, "full")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditService_Start_InvalidType(t *testing.T) {
	audits, models, _, svc := newAuditFixture()

	_, err := svc.Start(context.Background(), uuid.New(), "performance")
	assert.ErrorIs(t, err, domain.ErrInvalidAuditType)
	models.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditService_Start_CreateFails(t *testing.T) {
	audits, models, _, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID}, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(errors.New("db down"))

	_, err := svc.Start(context.Background(), modelID, "bias")
	assert.Error(t, err)
	audits.AssertNotCalled(t, "MarkRunning", mock.Anything, mock.Anything)
}

func TestAuditService_Reconcile_ScorerUnreachable(t *testing.T) {
	audits, models, scorer, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID, FilePath: "/m.onnx"}, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil)
	audits.On("MarkRunning", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)
	scorer.On("Score", mock.Anything, mock.AnythingOfType("ports.ScoreRequest")).
		Return(nil, errors.New("connection refused"))

	done := make(chan struct{})
	audits.On("MarkFailed", mock.Anything, mock.AnythingOfType("uuid.UUID"),
		mock.MatchedBy(func(cause string) bool {
			return strings.Contains(cause, "unavailable")
		})).Run(func(mock.Arguments) { close(done) }).Return(nil)

	_, err := svc.Start(context.Background(), modelID, "full")
	assert.NoError(t, err)

	waitDone(t, done)
	audits.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuditService_Reconcile_ScorerTimeout(t *testing.T) {
	audits, models, scorer, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID}, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil)
	audits.On("MarkRunning", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)
	scorer.On("Score", mock.Anything, mock.AnythingOfType("ports.ScoreRequest")).
		Return(nil, fmt.Errorf("call ml scorer: %w", context.DeadlineExceeded))

	done := make(chan struct{})
	audits.On("MarkFailed", mock.Anything, mock.AnythingOfType("uuid.UUID"),
		mock.MatchedBy(func(cause string) bool {
			return strings.Contains(cause, "timed out")
		})).Run(func(mock.Arguments) { close(done) }).Return(nil)

	_, err := svc.Start(context.Background(), modelID, "full")
	assert.NoError(t, err)

	waitDone(t, done)
}

func TestAuditService_Reconcile_MalformedResponse(t *testing.T) {
	audits, models, scorer, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID}, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil)
	audits.On("MarkRunning", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)
	scorer.On("Score", mock.Anything, mock.AnythingOfType("ports.ScoreRequest")).
		Return(nil, fmt.Errorf("%w: missing bias_score", domain.ErrMalformedScorerResponse))

	done := make(chan struct{})
	audits.On("MarkFailed", mock.Anything, mock.AnythingOfType("uuid.UUID"),
		mock.MatchedBy(func(cause string) bool {
			return strings.Contains(cause, "malformed")
		})).Run(func(mock.Arguments) { close(done) }).Return(nil)

	_, err := svc.Start(context.Background(), modelID, "full")
	assert.NoError(t, err)

	waitDone(t, done)
}

func TestAuditService_Reconcile_DispatchFails(t *testing.T) {
	audits, models, scorer, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID}, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil)
	audits.On("MarkRunning", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(errors.New("db down"))

	done := make(chan struct{})
	audits.On("MarkFailed", mock.Anything, mock.AnythingOfType("uuid.UUID"), "failed to dispatch audit").
		Run(func(mock.Arguments) { close(done) }).Return(nil)

	_, err := svc.Start(context.Background(), modelID, "full")
	assert.NoError(t, err)

	waitDone(t, done)
	scorer.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
}

func TestAuditService_Reconcile_PersistResultsFails(t *testing.T) {
	audits, models, scorer, svc := newAuditFixture()

	modelID := uuid.New()
	models.On("GetByID", mock.Anything, modelID).Return(&domain.Model{ID: modelID}, nil)
	audits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil)
	audits.On("MarkRunning", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)
	scorer.On("Score", mock.Anything, mock.AnythingOfType("ports.ScoreRequest")).
		Return(&domain.AuditScores{Bias: 10, Fairness: 90, Compliance: 80}, nil)
	audits.On("MarkCompleted", mock.Anything, mock.AnythingOfType("uuid.UUID"),
		mock.AnythingOfType("domain.AuditScores"), mock.AnythingOfType("time.Time")).
		Return(errors.New("db down"))

	done := make(chan struct{})
	audits.On("MarkFailed", mock.Anything, mock.AnythingOfType("uuid.UUID"), "failed to persist audit results").
		Run(func(mock.Arguments) { close(done) }).Return(nil)

	_, err := svc.Start(context.Background(), modelID, "full")
	assert.NoError(t, err)

	waitDone(t, done)
}

func TestAuditService_Get(t *testing.T) {
	audits, _, _, svc := newAuditFixture()

	id := uuid.New()
	expected := &domain.Audit{ID: id, Status: domain.AuditStatusCompleted}
	audits.On("GetByID", mock.Anything, id).Return(expected, nil)

	audit, err := svc.Get(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, domain.AuditStatusCompleted, audit.Status)
}

func TestAuditService_Get_NotFound(t *testing.T) {
	audits, _, _, svc := newAuditFixture()

	id := uuid.New()
	audits.On("GetByID", mock.Anything, id).Return(nil, domain.ErrAuditNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrAuditNotFound)
}

func TestAuditService_List_DefaultLimit(t *testing.T) {
	audits, _, _, svc := newAuditFixture()

	expectedFilter := ports.AuditListFilter{Limit: 20}
	audits.On("List", mock.Anything, expectedFilter).Return([]*domain.Audit{}, 0, nil)

	_, _, err := svc.List(context.Background(), ports.AuditListFilter{})
	assert.NoError(t, err)
	audits.AssertExpectations(t)
}

func TestAuditService_List_Filtered(t *testing.T) {
	audits, _, _, svc := newAuditFixture()

	modelID := uuid.New()
	filter := ports.AuditListFilter{Status: "completed", ModelID: modelID, Limit: 10}
	items := []*domain.Audit{{ID: uuid.New(), Status: domain.AuditStatusCompleted}}
	audits.On("List", mock.Anything, filter).Return(items, 1, nil)

	result, total, err := svc.List(context.Background(), filter)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, result, 1)
}

func TestAuditService_Stats(t *testing.T) {
	audits, models, _, svc := newAuditFixture()

	audits.On("Stats", mock.Anything).Return(&domain.AuditStats{
		TotalAudits: 5, Completed: 3, Running: 1, Failed: 1,
		AvgCompliance: 75.5, AvgBiasScore: 14, AvgFairnessScore: 82,
	}, nil)
	models.On("Count", mock.Anything).Return(2, nil)

	stats, err := svc.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 5, stats.TotalAudits)
	assert.Equal(t, 2, stats.TotalModels)
	assert.Equal(t, 75.5, stats.AvgCompliance)
}

func TestAuditService_Stats_NoCompletedAudits(t *testing.T) {
	audits, models, _, svc := newAuditFixture()

	audits.On("Stats", mock.Anything).Return(&domain.AuditStats{TotalAudits: 2, Running: 2}, nil)
	models.On("Count", mock.Anything).Return(1, nil)

	stats, err := svc.Stats(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, stats.AvgCompliance)
	assert.Zero(t, stats.AvgBiasScore)
	assert.Zero(t, stats.AvgFairnessScore)
}
