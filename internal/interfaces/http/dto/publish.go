package dto

import "novel-forge-api/internal/domain/entity"

// PublishRequest 即时发布请求
type PublishRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	// CDPURL / CreateURL 为空时使用服务默认
	CDPURL    string            `json:"cdp_url"`
	CreateURL string            `json:"create_url"`
	Selectors map[string]string `json:"selectors"`
	TimeoutMS int               `json:"timeout_ms"`
	DryRun    bool              `json:"dry_run"`
}

// PublishResponse 即时发布结果
type PublishResponse struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	URL        string `json:"url,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
}

// EnqueuePublishRequest 入队发布请求
type EnqueuePublishRequest struct {
	Title     string            `json:"title" binding:"required"`
	Content   string            `json:"content" binding:"required"`
	CDPURL    string            `json:"cdp_url"`
	CreateURL string            `json:"create_url"`
	Selectors map[string]string `json:"selectors"`
	TimeoutMS int               `json:"timeout_ms"`
	// ScheduleAt 期望执行时间（Unix 秒），不晚于当前时间时立即执行
	ScheduleAt int64 `json:"schedule_at"`
}

// PublishJobView 发布任务视图
type PublishJobView struct {
	JobID        string `json:"job_id"`
	CreatedAt    string `json:"created_at"`
	Status       string `json:"status"`
	Attempts     int    `json:"attempts"`
	MaxRetries   int    `json:"max_retries"`
	NextRunAt    int64  `json:"next_run_at,omitempty"`
	ChapterTitle string `json:"chapter_title"`
	LastDetail   string `json:"last_detail,omitempty"`
}

// NewPublishJobView 由领域任务构建视图
func NewPublishJobView(j entity.PublishJob) PublishJobView {
	return PublishJobView{
		JobID:        j.JobID,
		CreatedAt:    j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Status:       string(j.Status),
		Attempts:     j.Attempts,
		MaxRetries:   j.MaxRetries,
		NextRunAt:    j.NextRunAt,
		ChapterTitle: j.ChapterTitle,
		LastDetail:   j.LastDetail,
	}
}

// PublishQueueResponse 队列列表响应
type PublishQueueResponse struct {
	Jobs []PublishJobView `json:"jobs"`
}

// ProbeResponse 端点探测响应
type ProbeResponse struct {
	Success        bool     `json:"success"`
	Detail         string   `json:"detail"`
	ReachablePages []string `json:"reachable_pages,omitempty"`
}

// DashboardResponse 运行面板响应
type DashboardResponse struct {
	GenerationCalls  int64             `json:"generation_calls"`
	ChaptersProduced int64             `json:"chapters_produced"`
	PublishSuccess   int64             `json:"publish_success"`
	PublishFailed    int64             `json:"publish_failed"`
	RecentTasks      []PublishTaskView `json:"recent_tasks"`
	RecentJobs       []PublishJobView  `json:"recent_jobs"`
}

// PublishTaskView 即时发布历史视图
type PublishTaskView struct {
	TaskID    string `json:"task_id"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
	Title     string `json:"title"`
	Detail    string `json:"detail,omitempty"`
	URL       string `json:"url,omitempty"`
}

// NewPublishTaskView 由领域记录构建视图
func NewPublishTaskView(t entity.PublishTask) PublishTaskView {
	return PublishTaskView{
		TaskID:    t.TaskID,
		CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Status:    string(t.Status),
		Title:     t.Title,
		Detail:    t.Detail,
		URL:       t.URL,
	}
}
