package handler

import (
	"github.com/gin-gonic/gin"

	"novel-forge-api/internal/application/story"
	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/interfaces/http/dto"
	"novel-forge-api/internal/workflow/prompt"
	apperrors "novel-forge-api/pkg/errors"
	"novel-forge-api/pkg/logger"
)

// NovelHandler 小说生成处理器
type NovelHandler struct {
	orchestrator *story.Orchestrator
}

// NewNovelHandler 创建小说生成处理器
func NewNovelHandler(orchestrator *story.Orchestrator) *NovelHandler {
	return &NovelHandler{orchestrator: orchestrator}
}

// Generate 执行一次生成请求
// @Summary 小说生成
// @Tags Novel
// @Accept json
// @Produce json
// @Router /v1/novels/generate [post]
func (h *NovelHandler) Generate(c *gin.Context) {
	var req dto.GenerateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		respondError(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ModeKey, string(mode))
	logger.Info(ctx, "generation request accepted", "mode", mode, "model", req.Model)

	result, err := h.orchestrator.Run(ctx, req.ToEntity(mode))
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, dto.NewGenerateNovelResponse(result))
}

// WorkflowQuestions 返回创作前的5问清单
// @Summary 创作5问
// @Tags Novel
// @Produce json
// @Router /v1/workflow/questions [get]
func (h *NovelHandler) WorkflowQuestions(c *gin.Context) {
	questions := make([]dto.WorkflowQuestion, 0, len(prompt.DefaultWorkflowQuestions))
	for _, q := range prompt.DefaultWorkflowQuestions {
		questions = append(questions, dto.WorkflowQuestion{
			ID:       q.ID,
			Question: q.Question,
			Hint:     q.Hint,
		})
	}
	dto.Success(c, dto.WorkflowQuestionsResponse{Questions: questions})
}
