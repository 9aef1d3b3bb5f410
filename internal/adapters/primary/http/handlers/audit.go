package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"guardian-audit-service/internal/adapters/primary/http/dto"
	"guardian-audit-service/internal/core/domain"
	ports "guardian-audit-service/internal/core/ports/output"
)

func (h *Handler) RunAudit(c *gin.Context) {
	var req dto.RunAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "model_id is required"})
		return
	}

	// An unparseable id cannot reference any model.
	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		mapDomainError(c, domain.ErrModelNotFound)
		return
	}

	audit, err := h.auditSvc.Start(c.Request.Context(), modelID, req.AuditType)
	if err != nil {
		log.WithError(err).Error("start audit failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Audit started",
		"audit_id": audit.ID.String(),
		"status":   string(audit.Status),
	})
}

func (h *Handler) GetAudit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		mapDomainError(c, domain.ErrAuditNotFound)
		return
	}

	audit, err := h.auditSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit": dto.ToAuditResponse(audit)})
}

func (h *Handler) ListAudits(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}

	filter := ports.AuditListFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if raw := c.Query("model_id"); raw != "" {
		modelID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model_id filter"})
			return
		}
		filter.ModelID = modelID
	}

	audits, total, err := h.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list audits failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.AuditResponse, 0, len(audits))
	for _, a := range audits {
		items = append(items, dto.ToAuditResponse(a))
	}

	c.JSON(http.StatusOK, dto.ListAuditsResponse{
		Audits:     items,
		Pagination: dto.NewPagination(page, limit, total),
	})
}

func (h *Handler) AuditStats(c *gin.Context) {
	stats, err := h.auditSvc.Stats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("audit stats failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{Stats: stats})
}
