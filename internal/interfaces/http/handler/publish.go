package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"novel-forge-api/internal/application/publish"
	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/domain/port"
	"novel-forge-api/internal/interfaces/http/dto"
	apperrors "novel-forge-api/pkg/errors"
	"novel-forge-api/pkg/logger"
)

// PublishHandler 章节发布处理器
type PublishHandler struct {
	publisher port.Publisher
	scheduler *publish.Scheduler
	store     *publish.Store
	cfg       config.PublishConfig
}

// NewPublishHandler 创建发布处理器
func NewPublishHandler(publisher port.Publisher, scheduler *publish.Scheduler, store *publish.Store, cfg config.PublishConfig) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		scheduler: scheduler,
		store:     store,
		cfg:       cfg,
	}
}

// PublishNow 立即执行一次发布
// @Summary 即时发布
// @Tags Publish
// @Accept json
// @Produce json
// @Router /v1/publish [post]
func (h *PublishHandler) PublishNow(c *gin.Context) {
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	timeout := h.cfg.Timeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}

	pubReq := port.PublishRequest{
		CDPURL:    orDefault(req.CDPURL, h.cfg.CDPURL),
		CreateURL: orDefault(req.CreateURL, h.cfg.CreateURL),
		Title:     req.Title,
		Content:   req.Content,
		Selectors: req.Selectors,
		Timeout:   timeout,
		DryRun:    req.DryRun,
	}

	result, err := h.publisher.Publish(c.Request.Context(), pubReq)
	if err != nil {
		task := entity.NewPublishTask(req.Title, false, err.Error(), "", "")
		h.store.AppendTask(task)
		respondError(c, err)
		return
	}

	task := entity.NewPublishTask(req.Title, result.Success, result.Detail, result.URL, result.Screenshot)
	h.store.AppendTask(task)
	logger.Info(c.Request.Context(), "immediate publish finished",
		"task_id", task.TaskID, "success", result.Success)

	dto.Success(c, dto.PublishResponse{
		TaskID:     task.TaskID,
		Status:     string(task.Status),
		Detail:     result.Detail,
		URL:        result.URL,
		Screenshot: result.Screenshot,
	})
}

// Enqueue 将发布任务加入队列
// @Summary 入队发布
// @Tags Publish
// @Accept json
// @Produce json
// @Router /v1/publish/queue [post]
func (h *PublishHandler) Enqueue(c *gin.Context) {
	var req dto.EnqueuePublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	job := h.scheduler.Enqueue(req.Title, req.Content, req.CDPURL, req.CreateURL, req.Selectors, req.TimeoutMS, req.ScheduleAt)
	logger.Info(c.Request.Context(), "publish job enqueued",
		"job_id", job.JobID, "title", job.ChapterTitle)

	dto.Created(c, dto.NewPublishJobView(*job))
}

// Queue 返回全部发布任务
// @Summary 发布队列
// @Tags Publish
// @Produce json
// @Router /v1/publish/queue [get]
func (h *PublishHandler) Queue(c *gin.Context) {
	jobs := h.store.Jobs()
	views := make([]dto.PublishJobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, dto.NewPublishJobView(j))
	}
	dto.Success(c, dto.PublishQueueResponse{Jobs: views})
}

// Probe 探测浏览器端点
// @Summary 端点探测
// @Tags Publish
// @Produce json
// @Router /v1/publish/probe [get]
func (h *PublishHandler) Probe(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		endpoint = h.cfg.CDPURL
	}

	result, err := h.publisher.Probe(c.Request.Context(), endpoint, h.cfg.ProbeTimeout)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ProbeResponse{
		Success:        result.Success,
		Detail:         result.Detail,
		ReachablePages: result.ReachablePages,
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
