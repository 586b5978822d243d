package story

import "sync"

// Stats 进程级生成统计，仅在请求成功后累加
type Stats struct {
	mu               sync.Mutex
	generationCalls  int64
	chaptersProduced int64
}

func NewStats() *Stats {
	return &Stats{}
}

// RecordSuccess 记录一次成功的生成及其产出章数
func (s *Stats) RecordSuccess(chapters int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generationCalls++
	s.chaptersProduced += int64(chapters)
}

// Snapshot 返回当前计数
func (s *Stats) Snapshot() (calls, chapters int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generationCalls, s.chaptersProduced
}
