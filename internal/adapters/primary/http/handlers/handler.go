package handlers

import (
	"github.com/gin-gonic/gin"

	"guardian-audit-service/internal/adapters/primary/http/middleware"
	"guardian-audit-service/internal/core/domain"
	"guardian-audit-service/internal/core/services"
)

type Handler struct {
	auditSvc  *services.AuditService
	modelSvc  *services.ModelService
	userSvc   *services.UserService
	reportSvc *services.ReportService
}

func New(
	auditSvc *services.AuditService,
	modelSvc *services.ModelService,
	userSvc *services.UserService,
	reportSvc *services.ReportService,
) *Handler {
	return &Handler{
		auditSvc:  auditSvc,
		modelSvc:  modelSvc,
		userSvc:   userSvc,
		reportSvc: reportSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.Auth) {
	// Auth
	ar := r.Group("/auth")
	ar.POST("/register", h.Register)
	ar.POST("/login", h.Login)
	ar.GET("/me", auth.Authenticate(), h.Me)

	// Models
	models := r.Group("/models", auth.Authenticate())
	models.POST("/upload", auth.RequireRole(domain.RoleAdmin, domain.RoleAuditor), h.UploadModel)
	models.GET("", h.ListModels)
	models.GET("/:id", h.GetModel)
	models.DELETE("/:id", auth.RequireRole(domain.RoleAdmin), h.DeleteModel)

	// Audits
	audits := r.Group("/audits", auth.Authenticate())
	audits.POST("/run", auth.RequireRole(domain.RoleAdmin, domain.RoleAuditor), h.RunAudit)
	audits.GET("", h.ListAudits)
	audits.GET("/stats/summary", h.AuditStats)
	audits.GET("/:id", h.GetAudit)

	// Reports
	reports := r.Group("/reports", auth.Authenticate())
	reports.GET("/:id/pdf", h.DownloadReport)
}
