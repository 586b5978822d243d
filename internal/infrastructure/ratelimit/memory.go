// Package ratelimit 提供进程内滑动窗口限流
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter 进程内滑动窗口限流器
//
// 每个键维护窗口内的请求时间戳序列；判定与记录在同一锁内完成，
// 因此同一时刻的并发请求不会双双越过上限。
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewMemoryLimiter 创建限流器
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow 检查并记录一次请求
//
// 窗口内已有 limit 次请求时拒绝；被拒绝的请求不计入窗口。
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	stamps := l.windows[key]
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= limit {
		l.windows[key] = kept
		return false, nil
	}

	l.windows[key] = append(kept, now)
	return true, nil
}

// Purge 清理全部过期窗口，供长期运行的进程周期性调用
func (l *MemoryLimiter) Purge(window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-window)
	for key, stamps := range l.windows {
		kept := stamps[:0]
		for _, t := range stamps {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.windows, key)
			continue
		}
		l.windows[key] = kept
	}
}
