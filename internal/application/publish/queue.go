// Package publish 实现章节发布的任务队列与调度
package publish

import (
	"sync"
	"time"

	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/domain/port"
	"novel-forge-api/pkg/metrics"
)

// Store 进程内发布状态容器
//
// 任务入队后永不删除；发布历史（即时发布与调度执行的每次尝试）只追加。
// 所有读写都经由本结构的方法，内部用互斥锁保护。
type Store struct {
	mu    sync.Mutex
	jobs  []*entity.PublishJob
	tasks []*entity.PublishTask

	successCount int64
	failedCount  int64
}

// NewStore 创建发布状态容器
func NewStore() *Store {
	return &Store{}
}

// Enqueue 将任务加入队列
func (s *Store) Enqueue(job *entity.PublishJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	metrics.PublishQueueDepth.Set(float64(s.pendingLocked()))
}

// Jobs 返回全部任务的快照副本，入队顺序
func (s *Store) Jobs() []entity.PublishJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.PublishJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out
}

// NextDue 取出一个到期任务并标记为执行中
//
// 调度循环是唯一调用方，因此取出即独占。
func (s *Store) NextDue(now time.Time) *entity.PublishJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.Due(now) {
			j.Start()
			metrics.PublishQueueDepth.Set(float64(s.pendingLocked()))
			return j
		}
	}
	return nil
}

// Complete 写回任务执行结果，每次尝试都追加一条发布历史
//
// 成功/失败计数在此处维护，因此历史条目不经由 AppendTask 追加。
func (s *Store) Complete(job *entity.PublishJob, result *port.PublishResult, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, entity.NewPublishTask(
		job.ChapterTitle, result.Success, result.Detail, result.URL, result.Screenshot))

	if result.Success {
		job.Succeed(result.Detail)
		s.successCount++
		metrics.PublishAttemptsTotal.WithLabelValues("success").Inc()
	} else {
		job.Fail(now, result.Detail)
		metrics.PublishAttemptsTotal.WithLabelValues("failed").Inc()
		if job.Status == entity.PublishStatusFailed {
			s.failedCount++
		}
	}
	metrics.PublishQueueDepth.Set(float64(s.pendingLocked()))
}

// AppendTask 追加一条即时发布历史
func (s *Store) AppendTask(task *entity.PublishTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	if task.Status == entity.PublishTaskSuccess {
		s.successCount++
	} else {
		s.failedCount++
	}
}

// RecentTasks 返回最近 n 条即时发布历史，新者在前
func (s *Store) RecentTasks(n int) []entity.PublishTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.PublishTask, 0, n)
	for i := len(s.tasks) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *s.tasks[i])
	}
	return out
}

// RecentJobs 返回最近 n 个任务快照，新者在前
func (s *Store) RecentJobs(n int) []entity.PublishJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.PublishJob, 0, n)
	for i := len(s.jobs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *s.jobs[i])
	}
	return out
}

// Counters 返回成功/失败累计数
func (s *Store) Counters() (success, failed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successCount, s.failedCount
}

func (s *Store) pendingLocked() int {
	n := 0
	for _, j := range s.jobs {
		if j.Status == entity.PublishStatusQueued || j.Status == entity.PublishStatusRetryWait {
			n++
		}
	}
	return n
}
