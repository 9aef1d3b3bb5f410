package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"guardian-audit-service/internal/adapters/primary/http/dto"
	"guardian-audit-service/internal/adapters/primary/http/middleware"
	"guardian-audit-service/internal/core/domain"
	"guardian-audit-service/internal/core/services"
)

func (h *Handler) UploadModel(c *gin.Context) {
	file, header, err := c.Request.FormFile("model")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	var uploadedBy *uuid.UUID
	if claims, ok := middleware.CurrentUser(c); ok {
		uploadedBy = &claims.ID
	}

	model, err := h.modelSvc.Upload(c.Request.Context(), services.UploadParams{
		Name:         c.PostForm("name"),
		Framework:    c.PostForm("framework"),
		UploadedBy:   uploadedBy,
		OriginalName: header.Filename,
		File:         file,
	})
	if err != nil {
		log.WithError(err).Error("upload model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Model uploaded successfully",
		"model":   dto.ToModelResponse(model),
	})
}

func (h *Handler) ListModels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}

	models, total, err := h.modelSvc.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		log.WithError(err).Error("list models failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ModelResponse, 0, len(models))
	for _, m := range models {
		items = append(items, dto.ToModelResponse(m))
	}

	c.JSON(http.StatusOK, dto.ListModelsResponse{
		Models:     items,
		Pagination: dto.NewPagination(page, limit, total),
	})
}

func (h *Handler) GetModel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		mapDomainError(c, domain.ErrModelNotFound)
		return
	}

	model, err := h.modelSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"model": dto.ToModelResponse(model)})
}

func (h *Handler) DeleteModel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		mapDomainError(c, domain.ErrModelNotFound)
		return
	}

	if err := h.modelSvc.Delete(c.Request.Context(), id); err != nil {
		log.WithError(err).Error("delete model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Model deleted"})
}
