package entity

import (
	"time"

	"github.com/google/uuid"
)

// PublishJobStatus 发布任务状态
type PublishJobStatus string

const (
	PublishStatusQueued    PublishJobStatus = "queued"
	PublishStatusRunning   PublishJobStatus = "running"
	PublishStatusSuccess   PublishJobStatus = "success"
	PublishStatusRetryWait PublishJobStatus = "retry_wait"
	PublishStatusFailed    PublishJobStatus = "failed"
)

// PublishJob 章节发布任务
//
// 状态机：queued -> running -> success
//                          -> retry_wait -> running（到期重试）
//                          -> failed（重试耗尽）
// success 与 failed 为终态，不会回退。
type PublishJob struct {
	JobID     string    `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`

	// CDPURL / CreateURL 浏览器端点与章节创建页，空值使用服务默认
	CDPURL    string `json:"cdp_url,omitempty"`
	CreateURL string `json:"create_url,omitempty"`

	ChapterTitle   string `json:"chapter_title"`
	ChapterContent string `json:"chapter_content"`

	// Selectors 页面选择器覆盖（title/content/submit 等键）
	Selectors map[string]string `json:"selectors,omitempty"`

	// TimeoutMS 单次发布超时（毫秒），0 使用服务默认
	TimeoutMS int `json:"timeout_ms,omitempty"`

	Status   PublishJobStatus `json:"status"`
	Attempts int              `json:"attempts"`

	MaxRetries    int `json:"max_retries"`
	RetryDelaySec int `json:"retry_delay_sec"`

	// NextRunAt 下次可执行时间（Unix 秒）；0 表示立即可执行
	NextRunAt int64 `json:"next_run_at,omitempty"`

	// LastDetail 最近一次执行的结果说明
	LastDetail string `json:"last_detail,omitempty"`
}

// NewPublishJob 创建排队中的发布任务
func NewPublishJob(title, content string, maxRetries, retryDelaySec int) *PublishJob {
	return &PublishJob{
		JobID:          uuid.New().String(),
		CreatedAt:      time.Now(),
		ChapterTitle:   title,
		ChapterContent: content,
		Status:         PublishStatusQueued,
		MaxRetries:     maxRetries,
		RetryDelaySec:  retryDelaySec,
	}
}

// Due 任务是否到达可执行时间
func (j *PublishJob) Due(now time.Time) bool {
	switch j.Status {
	case PublishStatusQueued, PublishStatusRetryWait:
		return now.Unix() >= j.NextRunAt
	default:
		return false
	}
}

// Start 进入执行态并累加尝试次数
func (j *PublishJob) Start() {
	j.Status = PublishStatusRunning
	j.Attempts++
}

// Succeed 标记成功（终态）
func (j *PublishJob) Succeed(detail string) {
	j.Status = PublishStatusSuccess
	j.LastDetail = detail
	j.NextRunAt = 0
}

// Fail 标记一次失败：仍有重试额度则进入 retry_wait，否则进入 failed 终态
func (j *PublishJob) Fail(now time.Time, detail string) {
	j.LastDetail = detail
	if j.Attempts <= j.MaxRetries {
		j.Status = PublishStatusRetryWait
		j.NextRunAt = now.Add(time.Duration(j.RetryDelaySec) * time.Second).Unix()
		return
	}
	j.Status = PublishStatusFailed
	j.NextRunAt = 0
}

// Terminal 是否处于终态
func (j *PublishJob) Terminal() bool {
	return j.Status == PublishStatusSuccess || j.Status == PublishStatusFailed
}

// PublishTaskStatus 即时发布记录状态
type PublishTaskStatus string

const (
	PublishTaskSuccess PublishTaskStatus = "success"
	PublishTaskFailed  PublishTaskStatus = "failed"
)

// PublishTask 即时发布的历史记录（只追加，不修改）
type PublishTask struct {
	TaskID     string            `json:"task_id"`
	CreatedAt  time.Time         `json:"created_at"`
	Status     PublishTaskStatus `json:"status"`
	Title      string            `json:"title"`
	Detail     string            `json:"detail,omitempty"`
	URL        string            `json:"url,omitempty"`
	Screenshot string            `json:"screenshot,omitempty"`
}

// NewPublishTask 创建即时发布记录
func NewPublishTask(title string, ok bool, detail, url, screenshot string) *PublishTask {
	status := PublishTaskFailed
	if ok {
		status = PublishTaskSuccess
	}
	return &PublishTask{
		TaskID:     uuid.New().String(),
		CreatedAt:  time.Now(),
		Status:     status,
		Title:      title,
		Detail:     detail,
		URL:        url,
		Screenshot: screenshot,
	}
}
