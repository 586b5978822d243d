package publish

import (
	"context"
	"time"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/domain/port"
	"novel-forge-api/pkg/logger"
)

// Scheduler 发布任务调度器
//
// 常驻轮询循环：每个周期最多执行一个到期任务。
// 入队之后任务状态只由调度循环改写。
type Scheduler struct {
	store     *Store
	publisher port.Publisher
	cfg       config.PublishConfig
	now       func() time.Time
}

// NewScheduler 创建调度器
func NewScheduler(store *Store, publisher port.Publisher, cfg config.PublishConfig) *Scheduler {
	return &Scheduler{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Enqueue 创建并登记一个发布任务
//
// scheduleAt 为 Unix 秒；不晚于当前时间时立即可执行。
func (s *Scheduler) Enqueue(title, content, cdpURL, createURL string, selectors map[string]string, timeoutMS int, scheduleAt int64) *entity.PublishJob {
	job := entity.NewPublishJob(title, content, s.cfg.MaxRetries, int(s.cfg.RetryDelay/time.Second))
	job.CDPURL = cdpURL
	job.CreateURL = createURL
	job.Selectors = selectors
	job.TimeoutMS = timeoutMS
	if scheduleAt > s.now().Unix() {
		job.NextRunAt = scheduleAt
	}
	s.store.Enqueue(job)
	return job
}

// Run 启动轮询循环，直到 ctx 取消
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info(ctx, "publish scheduler started", "poll_interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "publish scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick 执行一个调度周期：依次执行所有到期任务
func (s *Scheduler) Tick(ctx context.Context) {
	for {
		job := s.store.NextDue(s.now())
		if job == nil {
			return
		}

		logger.Info(ctx, "running publish job",
			"job_id", job.JobID, "attempt", job.Attempts, "title", job.ChapterTitle)

		result := s.execute(ctx, job)
		s.store.Complete(job, result, s.now())

		if job.Status == entity.PublishStatusFailed {
			logger.Warn(ctx, "publish job permanently failed",
				"job_id", job.JobID, "attempts", job.Attempts, "detail", result.Detail)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job *entity.PublishJob) *port.PublishResult {
	req := port.PublishRequest{
		CDPURL:    job.CDPURL,
		CreateURL: job.CreateURL,
		Title:     job.ChapterTitle,
		Content:   job.ChapterContent,
		Selectors: job.Selectors,
		Timeout:   s.cfg.Timeout,
	}
	if req.CDPURL == "" {
		req.CDPURL = s.cfg.CDPURL
	}
	if req.CreateURL == "" {
		req.CreateURL = s.cfg.CreateURL
	}
	if job.TimeoutMS > 0 {
		req.Timeout = time.Duration(job.TimeoutMS) * time.Millisecond
	}

	result, err := s.publisher.Publish(ctx, req)
	if err != nil {
		return &port.PublishResult{Detail: err.Error()}
	}
	return result
}
