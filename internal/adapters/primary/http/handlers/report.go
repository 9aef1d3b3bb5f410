package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"guardian-audit-service/internal/adapters/primary/http/middleware"
	"guardian-audit-service/internal/core/domain"
)

func (h *Handler) DownloadReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		mapDomainError(c, domain.ErrAuditNotFound)
		return
	}

	requestedBy := ""
	if claims, ok := middleware.CurrentUser(c); ok {
		requestedBy = claims.Email
	}

	data, err := h.reportSvc.Generate(c.Request.Context(), id, requestedBy)
	if err != nil {
		log.WithError(err).Error("generate report failed")
		mapDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="audit-report-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", data)
}
