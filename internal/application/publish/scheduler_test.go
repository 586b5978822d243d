package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/domain/port"
)

// fakePublisher 按调用顺序返回预置结果
type fakePublisher struct {
	results  []*port.PublishResult
	errs     []error
	calls    int
	requests []port.PublishRequest
}

func (p *fakePublisher) Publish(_ context.Context, req port.PublishRequest) (*port.PublishResult, error) {
	i := p.calls
	p.calls++
	p.requests = append(p.requests, req)
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i < len(p.results) {
		return p.results[i], nil
	}
	return &port.PublishResult{Success: true, Detail: "published"}, nil
}

func (p *fakePublisher) Probe(context.Context, string, time.Duration) (*port.ProbeResult, error) {
	return &port.ProbeResult{Success: true}, nil
}

func testPublishConfig() config.PublishConfig {
	return config.PublishConfig{
		PollInterval: 2 * time.Second,
		MaxRetries:   2,
		RetryDelay:   30 * time.Second,
		Timeout:      45 * time.Second,
		CDPURL:       "http://localhost:9222",
		CreateURL:    "https://example.com/create",
	}
}

// fixedClock 可推进的测试时钟
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestScheduler(pub *fakePublisher) (*Scheduler, *Store, *fixedClock) {
	store := NewStore()
	s := NewScheduler(store, pub, testPublishConfig())
	clock := &fixedClock{t: time.Unix(1_700_000_000, 0)}
	s.now = clock.now
	return s, store, clock
}

func TestScheduler_SuccessPath(t *testing.T) {
	pub := &fakePublisher{}
	s, store, _ := newTestScheduler(pub)

	job := s.Enqueue("第一章", "正文", "", "", nil, 0, 0)
	assert.Equal(t, entity.PublishStatusQueued, job.Status)

	s.Tick(context.Background())

	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, entity.PublishStatusSuccess, job.Status)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, "published", job.LastDetail)
	assert.True(t, job.Terminal())

	success, failed := store.Counters()
	assert.EqualValues(t, 1, success)
	assert.EqualValues(t, 0, failed)
}

func TestScheduler_RetriesThenFails(t *testing.T) {
	// max_retries=2：首次 + 两次重试，共 3 次尝试后进入终态
	pub := &fakePublisher{
		results: []*port.PublishResult{
			{Success: false, Detail: "selector not found"},
			{Success: false, Detail: "selector not found"},
			{Success: false, Detail: "selector not found"},
		},
	}
	s, store, clock := newTestScheduler(pub)

	job := s.Enqueue("第一章", "正文", "", "", nil, 0, 0)

	s.Tick(context.Background())
	assert.Equal(t, entity.PublishStatusRetryWait, job.Status)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, clock.now().Add(30*time.Second).Unix(), job.NextRunAt)

	// 未到重试时间不执行
	clock.advance(10 * time.Second)
	s.Tick(context.Background())
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, entity.PublishStatusRetryWait, job.Status)

	clock.advance(25 * time.Second)
	s.Tick(context.Background())
	assert.Equal(t, 2, pub.calls)
	assert.Equal(t, entity.PublishStatusRetryWait, job.Status)

	clock.advance(35 * time.Second)
	s.Tick(context.Background())
	assert.Equal(t, 3, pub.calls)
	assert.Equal(t, entity.PublishStatusFailed, job.Status)
	assert.Equal(t, 3, job.Attempts)
	assert.True(t, job.Terminal())

	// 终态不再被调度
	clock.advance(time.Hour)
	s.Tick(context.Background())
	assert.Equal(t, 3, pub.calls)
	assert.Equal(t, entity.PublishStatusFailed, job.Status)

	_, failed := store.Counters()
	assert.EqualValues(t, 1, failed)
}

func TestScheduler_RetryThenSucceeds(t *testing.T) {
	pub := &fakePublisher{
		errs: []error{errors.New("cdp connection refused")},
	}
	s, store, clock := newTestScheduler(pub)

	job := s.Enqueue("第一章", "正文", "", "", nil, 0, 0)

	s.Tick(context.Background())
	assert.Equal(t, entity.PublishStatusRetryWait, job.Status)
	assert.Contains(t, job.LastDetail, "connection refused")

	clock.advance(31 * time.Second)
	s.Tick(context.Background())
	assert.Equal(t, entity.PublishStatusSuccess, job.Status)
	assert.Equal(t, 2, job.Attempts)

	success, failed := store.Counters()
	assert.EqualValues(t, 1, success)
	assert.EqualValues(t, 0, failed)
}

func TestScheduler_FillsDefaultsFromConfig(t *testing.T) {
	pub := &fakePublisher{}
	s, _, _ := newTestScheduler(pub)

	s.Enqueue("第一章", "正文", "", "", nil, 0, 0)
	s.Tick(context.Background())

	require.Len(t, pub.requests, 1)
	req := pub.requests[0]
	assert.Equal(t, "http://localhost:9222", req.CDPURL)
	assert.Equal(t, "https://example.com/create", req.CreateURL)
	assert.Equal(t, 45*time.Second, req.Timeout)
}

func TestScheduler_JobOverridesDefaults(t *testing.T) {
	pub := &fakePublisher{}
	s, _, _ := newTestScheduler(pub)

	s.Enqueue("第一章", "正文", "http://other:9222", "https://other.example/create",
		map[string]string{"title": "#title"}, 60000, 0)
	s.Tick(context.Background())

	require.Len(t, pub.requests, 1)
	req := pub.requests[0]
	assert.Equal(t, "http://other:9222", req.CDPURL)
	assert.Equal(t, "https://other.example/create", req.CreateURL)
	assert.Equal(t, time.Minute, req.Timeout)
	assert.Equal(t, "#title", req.Selectors["title"])
}

func TestScheduler_ScheduledEnqueue(t *testing.T) {
	pub := &fakePublisher{}
	s, _, clock := newTestScheduler(pub)

	// 未来时间点之前不执行，过期时间点视为立即
	s.Enqueue("第一章", "正文", "", "", nil, 0, clock.now().Add(time.Minute).Unix())
	s.Enqueue("第二章", "正文", "", "", nil, 0, clock.now().Add(-time.Minute).Unix())

	s.Tick(context.Background())
	require.Len(t, pub.requests, 1)
	assert.Equal(t, "第二章", pub.requests[0].Title)

	clock.advance(61 * time.Second)
	s.Tick(context.Background())
	require.Len(t, pub.requests, 2)
	assert.Equal(t, "第一章", pub.requests[1].Title)
}

func TestScheduler_RecordsTaskPerAttempt(t *testing.T) {
	pub := &fakePublisher{
		results: []*port.PublishResult{
			{Success: false, Detail: "selector not found"},
			{Success: true, Detail: "published", URL: "https://example.com/chapter/1", Screenshot: "shot.png"},
		},
	}
	s, store, clock := newTestScheduler(pub)

	s.Enqueue("第一章", "正文", "", "", nil, 0, 0)
	s.Tick(context.Background())
	clock.advance(31 * time.Second)
	s.Tick(context.Background())

	// 每次尝试都落一条历史，新者在前
	tasks := store.RecentTasks(10)
	require.Len(t, tasks, 2)
	assert.Equal(t, entity.PublishTaskSuccess, tasks[0].Status)
	assert.Equal(t, "第一章", tasks[0].Title)
	assert.Equal(t, "https://example.com/chapter/1", tasks[0].URL)
	assert.Equal(t, "shot.png", tasks[0].Screenshot)
	assert.Equal(t, entity.PublishTaskFailed, tasks[1].Status)
	assert.Equal(t, "selector not found", tasks[1].Detail)

	// 计数只按任务终局统计一次
	success, failed := store.Counters()
	assert.EqualValues(t, 1, success)
	assert.EqualValues(t, 0, failed)
}

func TestScheduler_DrainsAllDueJobsPerTick(t *testing.T) {
	pub := &fakePublisher{}
	s, store, _ := newTestScheduler(pub)

	s.Enqueue("第一章", "正文", "", "", nil, 0, 0)
	s.Enqueue("第二章", "正文", "", "", nil, 0, 0)
	s.Enqueue("第三章", "正文", "", "", nil, 0, 0)

	s.Tick(context.Background())

	assert.Equal(t, 3, pub.calls)
	for _, j := range store.Jobs() {
		assert.Equal(t, entity.PublishStatusSuccess, j.Status)
	}
}

func TestScheduler_TickWithEmptyQueue(t *testing.T) {
	pub := &fakePublisher{}
	s, _, _ := newTestScheduler(pub)

	s.Tick(context.Background())

	assert.Equal(t, 0, pub.calls)
}

func TestStore_JobsSnapshotOrder(t *testing.T) {
	store := NewStore()
	a := entity.NewPublishJob("甲", "a", 2, 30)
	b := entity.NewPublishJob("乙", "b", 2, 30)
	store.Enqueue(a)
	store.Enqueue(b)

	jobs := store.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "甲", jobs[0].ChapterTitle)
	assert.Equal(t, "乙", jobs[1].ChapterTitle)

	recent := store.RecentJobs(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "乙", recent[0].ChapterTitle)
}

func TestStore_RecentTasksNewestFirst(t *testing.T) {
	store := NewStore()
	store.AppendTask(entity.NewPublishTask("甲", true, "", "", ""))
	store.AppendTask(entity.NewPublishTask("乙", false, "timeout", "", ""))

	tasks := store.RecentTasks(5)
	require.Len(t, tasks, 2)
	assert.Equal(t, "乙", tasks[0].Title)
	assert.Equal(t, entity.PublishTaskFailed, tasks[0].Status)
	assert.Equal(t, "甲", tasks[1].Title)

	success, failed := store.Counters()
	assert.EqualValues(t, 1, success)
	assert.EqualValues(t, 1, failed)
}

func TestPublishJob_Due(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	job := entity.NewPublishJob("第一章", "正文", 2, 30)

	assert.True(t, job.Due(now), "queued 任务随时可执行")

	job.Start()
	assert.False(t, job.Due(now), "running 任务不可重复取出")

	job.Fail(now, "boom")
	assert.False(t, job.Due(now.Add(29*time.Second)))
	assert.True(t, job.Due(now.Add(30*time.Second)))

	job.Succeed("done")
	assert.False(t, job.Due(now.Add(time.Hour)))
}
