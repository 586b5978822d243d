package handler

import (
	"github.com/gin-gonic/gin"

	"novel-forge-api/internal/infrastructure/llm"
	"novel-forge-api/internal/interfaces/http/dto"
)

// ModelsHandler 模型目录处理器
type ModelsHandler struct {
	catalog         *llm.Catalog
	defaultProvider string
}

// NewModelsHandler 创建模型目录处理器
func NewModelsHandler(catalog *llm.Catalog, defaultProvider string) *ModelsHandler {
	return &ModelsHandler{catalog: catalog, defaultProvider: defaultProvider}
}

// List 返回可用模型列表
// @Summary 模型列表
// @Tags Models
// @Produce json
// @Router /v1/models [get]
func (h *ModelsHandler) List(c *gin.Context) {
	descriptors := h.catalog.List()
	models := make([]dto.ModelDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		models = append(models, dto.ModelDescriptor{
			UID:         d.UID(),
			Provider:    d.Provider,
			ID:          d.ID,
			APIBase:     d.APIBase,
			Description: d.Description,
		})
	}
	dto.Success(c, dto.ModelListResponse{
		Default: h.defaultProvider,
		Models:  models,
	})
}

// Check 对每个模型做连通性探活
// @Summary 模型连通性检查
// @Tags Models
// @Produce json
// @Router /v1/models/check [get]
func (h *ModelsHandler) Check(c *gin.Context) {
	dto.Success(c, h.catalog.Check(c.Request.Context()))
}
