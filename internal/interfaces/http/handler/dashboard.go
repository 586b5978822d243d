package handler

import (
	"github.com/gin-gonic/gin"

	"novel-forge-api/internal/application/publish"
	"novel-forge-api/internal/application/story"
	"novel-forge-api/internal/interfaces/http/dto"
)

// 面板展示的历史条数上限
const dashboardRecentLimit = 10

// DashboardHandler 运行面板处理器
type DashboardHandler struct {
	stats *story.Stats
	store *publish.Store
}

// NewDashboardHandler 创建运行面板处理器
func NewDashboardHandler(stats *story.Stats, store *publish.Store) *DashboardHandler {
	return &DashboardHandler{stats: stats, store: store}
}

// Dashboard 返回聚合计数与最近历史
// @Summary 运行面板
// @Tags Dashboard
// @Produce json
// @Router /v1/dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	calls, chapters := h.stats.Snapshot()
	success, failed := h.store.Counters()

	tasks := h.store.RecentTasks(dashboardRecentLimit)
	taskViews := make([]dto.PublishTaskView, 0, len(tasks))
	for _, t := range tasks {
		taskViews = append(taskViews, dto.NewPublishTaskView(t))
	}

	jobs := h.store.RecentJobs(dashboardRecentLimit)
	jobViews := make([]dto.PublishJobView, 0, len(jobs))
	for _, j := range jobs {
		jobViews = append(jobViews, dto.NewPublishJobView(j))
	}

	dto.Success(c, dto.DashboardResponse{
		GenerationCalls:  calls,
		ChaptersProduced: chapters,
		PublishSuccess:   success,
		PublishFailed:    failed,
		RecentTasks:      taskViews,
		RecentJobs:       jobViews,
	})
}
